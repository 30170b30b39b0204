package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/uslcheck/config"
	"github.com/s0up4200/uslcheck/usl"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    zerolog.Logger
	uslClient *usl.Client

	// Command flags
	outputFormat string
	outputFile   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "uslcheck",
	Short: "Query the Universal Scammer List from the command line",
	Long: `uslcheck talks to the Universal Scammer List moderation API.

It can check whether users are banned, show a user's ban history, and dump
the full ban listing with optional filter expressions.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "output format: console, json or yaml (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output", "", "write results to a file instead of stdout")

	// Add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(legacyDumpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeApp initializes the configuration, logger and client
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Create USL client
	uslClient, err = usl.NewClient(cfg.USL.UserAgent,
		usl.WithBaseURL(cfg.USL.URL),
		usl.WithTimeout(cfg.USL.Timeout),
		usl.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create USL client: %w", err)
	}

	logger.Debug().
		Str("url", cfg.USL.URL).
		Str("user_agent", uslClient.UserAgent()).
		Msg("USL client ready")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colour only on a terminal
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// withSession logs in, runs fn and always logs out again. A failed logout
// is only a warning since fn's result is already final.
func withSession(ctx context.Context, api usl.API, fn func(*usl.Session) error) error {
	session, err := api.Login(ctx, cfg.USL.Username, cfg.USL.Password, usl.Duration(cfg.USL.Duration))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	defer func() {
		// Logout even when ctx was cancelled so the server-side session is dropped
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.USL.Timeout)
		defer cancel()

		if _, err := api.Logout(logoutCtx, session); err != nil {
			logger.Warn().Err(err).Msg("Failed to log out of USL")
			return
		}
		logger.Debug().Str("username", session.Username).Msg("Logged out of USL")
	}()

	return fn(session)
}
