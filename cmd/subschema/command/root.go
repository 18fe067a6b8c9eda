// Copyright 2017 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package command implements the subschema command line.
package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/subschema/clog"
	"github.com/cayleygraph/subschema/config"
	"github.com/cayleygraph/subschema/internal/snapshot"
)

const (
	flagConfig = "config"
	envPrefix  = "SUBSCHEMA"
	envConfig  = envPrefix + "_CFG"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	GitHash string
	Date    string
}

// flag name -> configuration key
var configFlags = []struct {
	name, key string
}{
	{"source", config.KeySource},
	{"schema_version", config.KeyVersion},
	{"in_format", config.KeyFormat},
	{"namespaces", config.KeyNamespaces},
	{"roots", config.KeyRoots},
	{"universal_root", config.KeyUniversalRoot},
	{"universal_sentinel", config.KeyUniversalSentinel},
	{"policy", config.KeyPolicy},
	{"workers", config.KeyWorkers},
	{"cache", config.KeyCacheBackend},
	{"cache_path", config.KeyCachePath},
}

// NewRootCmd creates the subschema command with all subcommands. Settings
// come from, by increasing priority, built-in defaults, a configuration
// file, SUBSCHEMA_* environment variables, and flags.
func NewRootCmd(info BuildInfo) *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "subschema",
		Short:         "Derive a self-contained subset of a schema.org-style vocabulary.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfigFile(cmd, v)
		},
	}
	def := config.Default()
	pf := root.PersistentFlags()
	pf.String(flagConfig, "", "path to an explicit configuration file (yaml, json or toml; also $"+envConfig+")")
	pf.String("source", def.Source, `vocabulary snapshot: path or URL, "{version}" is replaced by --schema_version`)
	pf.String("schema_version", def.Version, "vocabulary version to read")
	pf.String("in_format", "", "quad format of the snapshot instead of auto-detection")
	pf.StringSlice("namespaces", def.Namespaces, "extensions whose elements are kept")
	pf.StringSlice("roots", def.Roots, "root classes of the subset")
	pf.String("universal_root", def.UniversalRoot, `class standing for "any object"`)
	pf.String("universal_sentinel", def.UniversalSentinel, "range tag emitted for the universal root")
	pf.String("policy", def.Policy, `handling of properties without a retained domain ("strict" or "retain-unmatched")`)
	pf.Int("workers", def.Workers, "properties projected concurrently")
	pf.String("cache", "", "snapshot cache backend ("+strings.Join(snapshot.Backends(), ", ")+"); empty disables the cache")
	pf.String("cache_path", "", "snapshot cache location for persistent backends")
	for _, f := range configFlags {
		v.BindPFlag(f.key, pf.Lookup(f.name))
	}

	root.AddCommand(
		NewBuildCmd(v),
		NewServeCmd(v),
		NewConfigCmd(v),
		NewVersionCmd(info),
	)
	return root
}

func readConfigFile(cmd *cobra.Command, v *viper.Viper) error {
	file, _ := cmd.Flags().GetString(flagConfig)
	if file == "" {
		file = os.Getenv(envConfig)
	}
	if file == "" {
		v.SetConfigName("subschema")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				clog.Infof("no configuration file found, using defaults")
				return nil
			}
			return err
		}
	} else {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("cannot read configuration %q: %v", file, err)
		}
	}
	clog.Infof("using configuration file %q", v.ConfigFileUsed())
	return nil
}

func loadConfig(v *viper.Viper) (config.Config, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return config.Config{}, err
	}
	if clog.V(1) {
		clog.Infof("source %s, %d roots, %d extensions", cfg.SourceURL(), len(cfg.Roots), len(cfg.Namespaces))
	}
	return cfg, nil
}
