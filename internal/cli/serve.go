package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/resql/internal/config"
	"github.com/roach88/resql/internal/dispatch"
	"github.com/roach88/resql/internal/server"
	"github.com/roach88/resql/internal/store"
	"github.com/roach88/resql/internal/tracing"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions

	// Listener overrides the configured listen address (for testing).
	Listener net.Listener

	// IDGenerator overrides the request ID generator (for testing).
	// If nil, defaults to server.UUIDv7Generator.
	IDGenerator server.IDGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "serve [saved-queries-dir]",
		Short: "Start the HTTP gateway",
		Long: `Load every saved query under the directory and serve them over HTTP.

  GET  /<project>/<name>?param=value      run a GET query
  POST /<project>/<name>        {...}     run a POST query
  POST /<project>/<name>/batch  [{...}]   run a POST query once per entry

Settings come from flags, RESQL_* environment variables and the config
file (--config, or ./resql.yaml), in that order of precedence.

Example:
  resql serve --db ./shop.db ./queries
  RESQL_LISTEN=:9000 resql serve --config ./resql.yaml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args, cmd)
		},
	}

	cmd.Flags().String("saved-queries-dir", "", "root of the saved query tree")
	cmd.Flags().String("db", "", "path to SQLite database")
	cmd.Flags().String("listen", defaults.Listen, "address to listen on")
	cmd.Flags().Int("max-open-conns", defaults.MaxOpenConns, "maximum open database connections")
	cmd.Flags().Int("batch-concurrency", defaults.Batch.Concurrency, "batch entries executed concurrently")
	cmd.Flags().Duration("cache-ttl", defaults.Cache.TTL, "GET result cache TTL (0 disables)")
	cmd.Flags().String("trace-exporter", defaults.Tracing.Exporter, "trace exporter (none|stdout)")

	return cmd
}

func runServe(opts *ServeOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	v := viper.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	if len(args) == 1 {
		v.Set(config.KeySavedQueriesDir, args[0])
	}
	cfg, err := config.Load(v, opts.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	reg, report, err := loadQueries(formatter, logger, cfg.SavedQueriesDir)
	if err != nil {
		return err
	}
	if n := len(report.Skipped); n > 0 {
		logger.Warn("some saved query files were skipped", "skipped", n)
	}

	logger.Info("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database, store.WithMaxOpenConns(cfg.MaxOpenConns))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	tracingCfg := cfg.Tracing
	tracingCfg.Writer = cmd.OutOrStdout()
	tp, err := tracing.NewProvider(tracingCfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start tracing", err)
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("error flushing traces", "error", shutdownErr)
		}
	}()

	d := dispatch.New(reg, st,
		dispatch.WithLogger(logger),
		dispatch.WithTracer(tp.Tracer()),
		dispatch.WithCache(cfg.Cache.TTL),
		dispatch.WithBatchConcurrency(cfg.Batch.Concurrency),
	)

	srv := server.New(d, server.Config{
		Listen:          cfg.Listen,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, server.WithLogger(logger), server.WithIDGenerator(opts.IDGenerator))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d saved queries. Press Ctrl-C to stop.\n", reg.Len())

	if opts.Listener != nil {
		err = srv.Serve(ctx, opts.Listener)
	} else {
		err = srv.ListenAndServe(ctx)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("gateway stopped gracefully")
	return nil
}
