package command

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/net/netutil"

	"github.com/cayleygraph/subschema"
	"github.com/cayleygraph/subschema/clog"
	"github.com/cayleygraph/subschema/internal/snapshot"
	schemahttp "github.com/cayleygraph/subschema/server/http"
)

const (
	flagHost     = "host"
	flagRefresh  = "refresh"
	flagMaxConns = "max_conns"
)

func NewServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the subset over HTTP on the given host and port.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var opts []subschema.Option
			if cfg.Cache.Backend != "" {
				// keep one cache open across refreshes
				c, err := snapshot.Open(cfg.Cache.Backend, cfg.Cache.Path)
				if err != nil {
					return err
				}
				defer c.Close()
				opts = append(opts, subschema.WithCache(c))
			}
			res, err := subschema.Build(ctx, cfg, opts...)
			if err != nil {
				return err
			}
			api := schemahttp.NewAPI(res, schemahttp.CORS, schemahttp.LogRequest)

			if every, _ := cmd.Flags().GetDuration(flagRefresh); every > 0 {
				// stops before the cache is closed
				stopRefresh := startRefresh(ctx, every, func(ctx context.Context) error {
					res, err := subschema.Build(ctx, cfg, opts...)
					if err != nil {
						return err
					}
					api.SetResult(res)
					return nil
				})
				defer stopRefresh()
			}

			host, _ := cmd.Flags().GetString(flagHost)
			lis, err := net.Listen("tcp", host)
			if err != nil {
				return err
			}
			if n, _ := cmd.Flags().GetInt(flagMaxConns); n > 0 {
				lis = netutil.LimitListener(lis, n)
			}
			clog.Infof("listening on http://%s/api/v1/", lis.Addr())
			return serve(ctx, &http.Server{Handler: api}, lis)
		},
	}
	cmd.Flags().String(flagHost, "127.0.0.1:64220", "host:port to listen on")
	cmd.Flags().Duration(flagRefresh, 0, "rebuild the subset periodically (0 disables)")
	cmd.Flags().Int(flagMaxConns, 0, "maximum number of simultaneous connections (0 for no limit)")
	return cmd
}

func serve(ctx context.Context, srv *http.Server, lis net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(lis)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	clog.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// startRefresh calls rebuild every interval until the returned function is
// called. That function returns once no rebuild is running.
func startRefresh(ctx context.Context, every time.Duration, rebuild func(context.Context) error) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			if err := rebuild(ctx); err != nil && ctx.Err() == nil {
				clog.Errorf("refresh failed, keeping the previous subset: %v", err)
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
