package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/canlab/cansim/internal/adapters/metrics"
	"github.com/canlab/cansim/internal/cliconfig"
	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/pkg/cansim"
	"github.com/canlab/cansim/pkg/log"
	"github.com/canlab/cansim/plugins/configwatcher"
)

const helpBanner = `
   ██████╗ █████╗ ███╗   ██╗███████╗██╗███╗   ███╗
  ██╔════╝██╔══██╗████╗  ██║██╔════╝██║████╗ ████║
  ██║     ███████║██╔██╗ ██║███████╗██║██╔████╔██║
  ██║     ██╔══██║██║╚██╗██║╚════██║██║██║╚██╔╝██║
  ╚██████╗██║  ██║██║ ╚████║███████║██║██║ ╚═╝ ██║
   ╚═════╝╚═╝  ╚═╝╚═╝  ╚═══╝╚══════╝╚═╝╚═╝     ╚═╝
`

const helpDescription = `
Simulate a CAN telemetry network: two virtual devices exchanging
13-byte wire frames, a watchdog monitor and a periodic calculator,
all driven by a scalable virtual clock.

Highlights:
  - Speed the simulation up or slow it down live via the scale factor.
  - Configure via file, environment (CANSIM_*), or flags.
  - Optional Prometheus endpoint for per-stream frame statistics.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  cansim --scale 0.5 --watchdog-auto-interval 1
  cansim --config $HOME/.cansim/config.toml --watch-config --metrics-addr :9100
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newLogger(level string) *log.ZerologAdapter {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	zl := zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	return log.NewZerologAdapterWithLogger(zl)
}

func main() {
	cfg := cliconfig.DefaultConfig()

	root := &cobra.Command{
		Use:     "cansim",
		Short:   "Simulate a CAN telemetry network with a scalable virtual clock",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.cansim/config.toml),
			// then environment, then flag overrides.
			cfgFile := cfg.ConfigPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else {
				cfgFile = ""
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel)
			logger.Info("configuration loaded",
				log.Float64("frame_rate", cfg.FrameRate),
				log.Float64("scale", cfg.Scale),
				log.Duration("watchdog_deadline", cfg.WatchdogDeadline),
				log.Int("watchdog_auto_interval", cfg.WatchdogAutoInterval))

			libCfg := cansim.Config{
				FrameRate:            cfg.FrameRate,
				CalculatorPeriod:     cfg.ModuleCPeriod,
				WatchdogDeadline:     cfg.WatchdogDeadline,
				WatchdogAutoInterval: cfg.WatchdogAutoInterval,
				Scale:                cfg.Scale,
				ConfigPath:           cfgFile,
			}

			opts := []cansim.Option{
				cansim.WithLogger(logger),
			}

			// Prometheus endpoint
			var metricsSrv *http.Server
			if cfg.MetricsAddr != "" {
				observer := metrics.NewObserver()
				registry := prometheus.NewRegistry()
				if err := observer.Register(registry); err != nil {
					return fmt.Errorf("register metrics: %w", err)
				}
				opts = append(opts, cansim.WithStatsObserver(observer))

				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
				metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
				go func() {
					logger.Info("metrics listening", log.String("addr", cfg.MetricsAddr))
					if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server failed", log.Err(err))
					}
				}()
			}

			if cfg.WatchConfig && cfgFile != "" {
				opts = append(opts, configwatcher.WithDefaultConfigWatcher())
			}

			sim, err := cansim.New(libCfg, opts...)
			if err != nil {
				return fmt.Errorf("create simulator: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if cfg.RunDuration > 0 {
				ctx, cancel = context.WithTimeout(ctx, cfg.RunDuration)
				defer cancel()
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := sim.Start(ctx); err != nil {
				return fmt.Errorf("start simulator: %w", err)
			}

			// Detect completion (run duration elapsed or clock halted).
			doneCh := make(chan struct{})
			go func() {
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						close(doneCh)
						return
					case <-ticker.C:
						status := sim.Status()
						if status == cansim.StateStopped || status == cansim.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			select {
			case <-sigCh:
				logger.Info("received signal, stopping")
			case <-doneCh:
				if sim.Status() == cansim.StateCrashed {
					logger.Error("simulator crashed")
				}
			}

			if metricsSrv != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer shutdownCancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}

			if err := sim.Stop(); err != nil && !errors.Is(err, domain.ErrNotRunning) {
				return fmt.Errorf("stop simulator: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfg.ConfigPath, "config", "", "path to config file (default: $HOME/.cansim/config.toml)")

	root.Flags().Float64Var(&cfg.FrameRate, "frame-rate", cfg.FrameRate, "status frames per virtual second per device")
	root.Flags().DurationVar(&cfg.ModuleCPeriod, "calculator-period", cfg.ModuleCPeriod, "virtual interval between calculator passes")
	root.Flags().DurationVar(&cfg.WatchdogDeadline, "watchdog-deadline", cfg.WatchdogDeadline, "virtual time before a missed reset triggers the watchdog")
	root.Flags().IntVar(&cfg.WatchdogAutoInterval, "watchdog-auto-interval", cfg.WatchdogAutoInterval, "automatic watchdog reset interval in virtual seconds (0 = manual)")

	root.Flags().Float64Var(&cfg.Scale, "scale", cfg.Scale, "time scale: real seconds per virtual second (>1 slows down)")
	root.Flags().DurationVar(&cfg.RunDuration, "run-duration", cfg.RunDuration, "stop after this much real time (0 = run until interrupted)")

	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus listen address (empty = disabled)")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload runtime-adjustable settings when the config file changes")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cansim:", err)
		os.Exit(1)
	}
}
