package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"alamos-extract/internal/alamos"
	"alamos-extract/internal/components/telemetry"
	"alamos-extract/internal/config"
	"alamos-extract/internal/fetch"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	debug      *bool
	insecure   *bool
	timeout    *int
)

// session is what every subcommand runs with, it is set up before the
// subcommand runs.
var session struct {
	cfg       config.Config
	tel       telemetry.API
	otel      telemetry.Otel
	assembler alamos.Assembler
}

func init() {
	flags := rootCmd.PersistentFlags()
	configPath = flags.String("config", "", "Path to a json5 config, by default "+config.DefaultFile+" is searched for upwards from the working directory.")
	verbose = flags.BoolP("verbose", "v", false, "Log at info level.")
	debug = flags.Bool("debug", false, "Log at debug level.")
	insecure = flags.Bool("insecure", false, "Skip TLS certificate verification.")
	timeout = flags.Int("timeout", 0, "Request timeout in seconds, overrides the config.")
}

var rootCmd = &cobra.Command{
	Use:          "alamos-extract",
	Short:        "alamos-extract extracts clusters, patients and sequence accessions from the Los Alamos HIV database.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if *verbose {
			level = slog.LevelInfo
		}
		if *debug {
			level = slog.LevelDebug
		}
		telemetry.InitSlog(os.Stderr, level)

		cfg, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if *insecure {
			cfg.InsecureSkipVerify = true
		}
		if *timeout > 0 {
			cfg.TimeoutSeconds = *timeout
		}

		otel, err := telemetry.Setup(cmd.Context(), "alamos-extract", cfg.Otlp)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		tel := telemetry.SlogAPI{}
		client := fetch.NewClient(fetch.Options{
			BaseUrl:            cfg.BaseUrl,
			Timeout:            cfg.Timeout(),
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			UserAgent:          cfg.UserAgent,
			RetryCount:         cfg.RetryCount,
		}, tel)

		session.cfg = cfg
		session.tel = tel
		session.otel = otel
		session.assembler = alamos.NewAssembler(client, alamos.Options{
			Encoding:    cfg.CharsetHint(),
			Concurrency: cfg.Concurrency,
		}, tel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := session.otel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
