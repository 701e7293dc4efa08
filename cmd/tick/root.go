package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romshark/tick"
	"github.com/romshark/tick/internal/config"
	"github.com/romshark/tick/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	verbosity   int
	cfgFile     string
	interval    time.Duration
	metricsAddr string

	rootCmd = &cobra.Command{
		Use:   "tick",
		Short: "Replay registered actions on a fixed period",
		Long: `tick registers one print action per configured pair and invokes
every registered action in registration order once per interval,
until it receives SIGINT or SIGTERM. SIGHUP cuts the current sleep short.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE:          runTicker,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "TOML config file")
	rootCmd.Flags().DurationVar(&interval, "interval", tick.DefaultInterval, "Sleep duration between ticks")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tick version %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func runTicker(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("interval") {
		cfg.Interval = interval
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	ticker, err := newTicker(cfg, cmd.OutOrStdout(), logging.GetLogger("ticker"), reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go interruptOnHangup(ctx, ticker)

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return ticker.Run(ctx)
}

// newTicker builds the registry with one print action per configured pair.
func newTicker(
	cfg *config.Config,
	out io.Writer,
	logger zerolog.Logger,
	reg prometheus.Registerer,
) (*tick.Ticker, error) {
	registry := tick.NewRegistry()
	for _, p := range cfg.Pairs {
		a := tick.NewPrintPair(tick.NewPair(p.First, p.Second), cfg.Message, out)
		id, err := registry.Register(a)
		if err != nil {
			return nil, fmt.Errorf("registering pair %s: %w", a.Pair(), err)
		}
		logger.Debug().Str("action", id.String()).Stringer("pair", a.Pair()).Msg("registered")
	}

	return tick.NewTicker(
		registry,
		cfg.Interval,
		tick.WithLogger(logger),
		tick.WithMetrics(tick.NewMetrics(reg)),
	), nil
}

func interruptOnHangup(ctx context.Context, t *tick.Ticker) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-hup:
			t.Interrupt()
		case <-ctx.Done():
			return
		}
	}
}

func serveMetrics(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	return srv
}
