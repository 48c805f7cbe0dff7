// Package cmd implements the masker command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/otel"
)

// resolvedVersion returns Version unless it is "dev" and Go build info
// contains a real module version (e.g. from go install ...@v1.2.0).
func resolvedVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// tracer is the package-level tracer for all CLI commands
var tracer = otel.Tracer("github.com/dativo-io/masker/internal/cmd")

var (
	// otelShutdown holds the OTel shutdown function, called from Execute()
	otelShutdown func(context.Context) error

	// Version info injected via ldflags at build time
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	// Global flags
	cfgFile   string
	envFile   string
	verbose   bool
	logLevel  string
	logFormat string
	otelFlag  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "masker",
	Short: "Whitelist masking for dialog text",
	Long: `Masker redacts names, places, profanity, numbers and URLs from
conversational text, replacing them with category placeholders such as
~name~ or ~geo~ while keeping the rest of each message intact.

Each tenant keeps its own whitelist, name, geolocation and profanity lists
and regex templates under the properties directory.`,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		setupLogging()

		// Initialize OpenTelemetry when --otel or MASKER_OTEL_ENABLED=true
		otelEnabled := otelFlag || os.Getenv("MASKER_OTEL_ENABLED") == "true"
		shutdown, err := otel.Setup(otel.Config{
			ServiceName: "masker",
			Version:     resolvedVersion(),
			Enabled:     otelEnabled,
		})
		if err != nil {
			return fmt.Errorf("initializing OpenTelemetry: %w", err)
		}
		otelShutdown = shutdown
		return nil
	},
}

func setupLogging() {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Structured logs never go to stdout, which carries masked text for piping.
	var out io.Writer = os.Stderr
	if file := viper.GetString(config.KeyLogFile); file != "" {
		out = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    viper.GetInt(config.KeyLogMaxSizeMB),
			MaxBackups: viper.GetInt(config.KeyLogMaxBackups),
			MaxAge:     viper.GetInt(config.KeyLogMaxAgeDays),
			Compress:   true,
		}
	}
	if logFormat == "json" || out != os.Stderr {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).
			With().
			Timestamp().
			Logger()
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./masker.config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading MASKER_* variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file, rotated by size")
	rootCmd.PersistentFlags().BoolVar(&otelFlag, "otel", false, "enable OpenTelemetry (traces and metrics to stderr)")
	rootCmd.PersistentFlags().String("properties", "", "tenant properties directory (default ./properties)")

	_ = viper.BindPFlag(config.KeyLogFile, rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag(config.KeyPropertiesDir, rootCmd.PersistentFlags().Lookup("properties"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("masker.config")
		viper.SetConfigType("yaml")
	}
	// Read config (ignore errors - file may not exist yet)
	_ = viper.ReadInConfig()
}

// Execute runs the root command and flushes OTel on exit
func Execute() error {
	err := rootCmd.Execute()
	if otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(ctx)
	}
	return err
}

// tenantOrDefault returns id, or the configured default tenant when id is
// empty.
func tenantOrDefault(id string, cfg *config.Config) string {
	if id != "" {
		return id
	}
	return cfg.DefaultTenant
}
