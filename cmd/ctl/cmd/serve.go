package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/jpfielding/quadpix.go/pkg/history"
	"github.com/jpfielding/quadpix.go/pkg/logging"
	"github.com/jpfielding/quadpix.go/pkg/server"
)

// NewServeCmd creates the serve cobra command
func NewServeCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the quadtree image API over HTTP",
		Long:  "serves the flip/overlay/analyze endpoints, with optional sqlite request history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			addr, _ := cmd.Flags().GetString("addr")
			noHistory, _ := cmd.Flags().GetBool("no-history")

			cfg := server.DefaultConfig()
			if cfgPath != "" {
				var err error
				if cfg, err = server.LoadConfig(cfgPath); err != nil {
					return err
				}
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if cfg.LogFile != "" {
				slog.SetDefault(logging.Logger(logging.Rotating(cfg.LogFile), true, slog.LevelInfo))
			}

			var repo history.Repository
			if !noHistory && cfg.HistoryDB != "" {
				db, err := history.Open(ctx, cfg.HistoryDB)
				if err != nil {
					return err
				}
				defer db.Close()
				if repo, err = history.NewRepository(db); err != nil {
					return err
				}
			}

			logHostStats(ctx)
			return runServer(ctx, cfg, repo, gitsha)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "YAML config file path")
	pf.StringP("addr", "a", "", "listen address (overrides config)")
	pf.Bool("no-history", false, "disable the sqlite request history")
	return cmd
}

func runServer(ctx context.Context, cfg server.Config, repo history.Repository, gitsha string) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(cfg, repo, gitsha).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "listening", "addr", cfg.Addr)
		errs <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutCtx, cnc := context.WithTimeout(context.Background(), 10*time.Second)
		defer cnc()
		slog.InfoContext(ctx, "shutting down")
		return srv.Shutdown(shutCtx)
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// logHostStats records where we are running for the startup log line.
func logHostStats(ctx context.Context) {
	host, _ := os.Hostname()
	attrs := []any{"host", host}
	if cpus, err := cpu.Counts(true); err == nil {
		attrs = append(attrs, "cpus", cpus)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		attrs = append(attrs, "mem_total", vm.Total)
	}
	slog.InfoContext(ctx, "starting", attrs...)
}
