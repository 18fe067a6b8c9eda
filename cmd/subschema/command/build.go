package command

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/subschema"
	"github.com/cayleygraph/subschema/clog"
	"github.com/cayleygraph/subschema/exporter"
)

const (
	flagOut         = "out"
	flagOutFormat   = "out_format"
	flagJSON        = "json"
	flagQuiet       = "quiet"
	flagMetricsFile = "metrics_file"
	flagRefetch     = "refetch"
)

func writerFormats() string {
	var names []string
	for _, f := range quad.Formats() {
		if f.Writer != nil {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return `"` + strings.Join(names, `", "`) + `"`
}

func NewBuildCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Derive the subset and report warnings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			var opts []subschema.Option
			if refetch, _ := cmd.Flags().GetBool(flagRefetch); refetch {
				opts = append(opts, subschema.WithRefetch())
			}
			res, err := subschema.Build(cmd.Context(), cfg, opts...)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString(flagOut)
			typ, _ := cmd.Flags().GetString(flagOutFormat)
			asJSON, _ := cmd.Flags().GetBool(flagJSON)
			quiet, _ := cmd.Flags().GetBool(flagQuiet)

			// the report goes to stderr when stdout carries the data
			report := cmd.OutOrStdout()
			if out == "-" || asJSON {
				report = cmd.ErrOrStderr()
			}
			if !quiet {
				exp := exporter.NewExporter(report)
				exp.ExportReport(res)
				if err := exp.Err(); err != nil {
					return err
				}
				if clog.V(1) {
					clog.Infof("report lists %d diagnostics", exp.Count())
				}
			}
			if asJSON {
				exp := exporter.NewExporter(cmd.OutOrStdout())
				exp.ExportJson(res)
				if err := exp.Err(); err != nil {
					return err
				}
				clog.Infof("%d properties were written as JSON", exp.Count())
			}
			if out != "" {
				if err := writeSchemaTo(cmd.OutOrStdout(), out, typ, res); err != nil {
					return err
				}
			}
			if path, _ := cmd.Flags().GetString(flagMetricsFile); path != "" {
				if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
					return fmt.Errorf("cannot write metrics: %v", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP(flagOut, "o", "", `file to write the subset to (".gz" supported, "-" for stdout)`)
	cmd.Flags().String(flagOutFormat, "", `quad format to use instead of auto-detection (`+writerFormats()+`)`)
	cmd.Flags().Bool(flagJSON, false, "write the subset as JSON to stdout")
	cmd.Flags().BoolP(flagQuiet, "q", false, "do not print the report")
	cmd.Flags().Bool(flagRefetch, false, "download a remote source again instead of using the cached copy")
	cmd.Flags().String(flagMetricsFile, "", "write build metrics to this file in the Prometheus text format")
	return cmd
}

func writeSchemaTo(stdout io.Writer, path string, typ string, res *subschema.Result) error {
	var w io.Writer
	if path == "-" {
		w = stdout
		clog.Infof("writing subset to stdout")
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create file %q: %v", path, err)
		}
		defer f.Close()
		w = f
	}

	ext := filepath.Ext(path)
	if ext == ".gz" {
		ext = filepath.Ext(strings.TrimSuffix(path, ext))
		zw := gzip.NewWriter(w)
		defer zw.Close()
		w = zw
	}
	format, err := exporter.FormatFor(typ, ext)
	if err != nil {
		return err
	}
	n, err := exporter.WriteQuads(w, format, res)
	if err != nil {
		return err
	}
	clog.Infof("%d quads were written as %s", n, format.Name)
	return nil
}
