package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	livedash "github.com/jondoveston/livedash/internal"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "livedash [url]",
	Short: "Terminal dashboard for live metrics with history",
	Long: `livedash polls a metrics endpoint every few seconds and keeps a set of
stat cards and charts up to date, seeded from a historical snapshot file.

Examples:
  livedash http://cache.lan:8080
  livedash --source exposition http://localhost:8080/metrics
  livedash --source prometheus --config livedash.yaml http://prometheus.lan:9090
  livedash --source local
  livedash --once http://cache.lan:8080
  LIVEDASH_URL=http://cache.lan:8080 livedash`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("url", "", "base URL of the metrics server")
	flags.String("source", "http", "snapshot source: http, exposition, prometheus or local")
	flags.String("metrics-path", "/api/metrics", "path of the live metrics endpoint")
	flags.String("history-path", "/static/metrics_history.json", "path of the historical metrics file, empty to skip")
	flags.Duration("interval", livedash.RefreshDuration(), "time between live fetches")
	flags.String("overlap", "latest-wins", "how out of order results are handled: latest-wins or concurrent")
	flags.Duration("fetch-timeout", 0, "timeout for each fetch, 0 for none")
	flags.Int("max-history", 0, "keep only the newest N historical snapshots, 0 keeps all")
	flags.String("timezone", "", "IANA time zone for chart labels, default local")
	flags.String("config", "", "optional YAML config file")
	flags.String("log-file", "livedash.log", "log file for the interactive dashboard, - for stderr")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("metrics-addr", "", "serve livedash's own metrics on this address, e.g. :9464")
	flags.Bool("once", false, "fetch once, print the dashboard and exit")
	flags.BoolP("version", "v", false, "Print version information")

	// Bind flags to Viper keys (dashes in flags become underscores in viper)
	for _, name := range []string{"url", "source", "metrics-path", "history-path", "interval", "overlap",
		"fetch-timeout", "max-history", "timezone", "log-file", "log-level", "metrics-addr", "once"} {
		if err := viper.BindPFlag(flagKey(name), flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	viper.SetEnvPrefix("livedash")
	viper.AutomaticEnv()
	livedash.SetDefaults(viper.GetViper())
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func run(cmd *cobra.Command, args []string) error {
	if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
		fmt.Printf("livedash version %s\n", version)
		return nil
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// Positional argument only applies when neither flag nor env set the URL
	if len(args) == 1 && viper.GetString(livedash.KeyURL) == "" {
		viper.Set(livedash.KeyURL, args[0])
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if !interactive {
		viper.Set(livedash.KeyOnce, true)
	}

	cfg, err := livedash.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logFile := cfg.LogFile
	if cfg.Once {
		logFile = "-"
	}
	logger, closeLog, err := livedash.NewLogger(cfg.LogLevel, logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("starting livedash", zap.String("version", version), zap.String("source", string(cfg.Source)), zap.String("url", cfg.URL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := livedash.NewSource(ctx, cfg, logger)
	if err != nil {
		return err
	}

	instruments := livedash.NewInstruments()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := instruments.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("self metrics server stopped", zap.Error(err))
			}
		}()
	}

	session := livedash.NewSession(livedash.SessionOptions{
		Source:       src,
		Logger:       logger,
		Instruments:  instruments,
		Location:     cfg.Location,
		Overlap:      cfg.Overlap,
		MaxHistory:   cfg.MaxHistory,
		FetchTimeout: cfg.FetchTimeout,
	})

	if cfg.Once {
		width := 120
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
		return livedash.RunOnce(ctx, session, os.Stdout, width)
	}
	return livedash.RunDashboard(ctx, session, cfg.Interval)
}
