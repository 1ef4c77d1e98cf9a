package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/waitline/waitline/internal/cmd/client"
	serverrun "github.com/waitline/waitline/internal/cmd/server"
	cfgpkg "github.com/waitline/waitline/internal/config"
	pebblestore "github.com/waitline/waitline/internal/storage/pebble"
	logpkg "github.com/waitline/waitline/pkg/log"
)

func main() {
	// initialize logger for CLI
	// Respect WAITLINE_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("WAITLINE_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "waitline",
		Short: "waitline runtime CLI",
		Long:  "waitline is a single-binary queue coordination service for walk-in venues. This CLI manages the server and basic operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the waitline server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			configPath, _ := cmd.Flags().GetString("config")
			redisAddr, _ := cmd.Flags().GetString("redis")
			modelPath, _ := cmd.Flags().GetString("model")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			if httpAddr != "" {
				cfg.HTTPAddr = httpAddr
			}
			if redisAddr != "" {
				cfg.Redis.Addr = redisAddr
			}
			if modelPath != "" {
				cfg.Estimator.ModelPath = modelPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if logLevel != "" {
				_ = os.Setenv("WAITLINE_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("WAITLINE_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				HTTPAddr:      cfg.HTTPAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (overrides config)")
	serverStartCmd.Flags().String("config", os.Getenv("WAITLINE_CONFIG"), "Path to JSON config file")
	serverStartCmd.Flags().String("redis", "", "Redis address for the shared queue store (overrides config)")
	serverStartCmd.Flags().String("model", "", "Path to the wait-time model artifact (overrides config)")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("log-level", os.Getenv("WAITLINE_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("WAITLINE_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// client commands (migrated into internal/cmd/client)
	rootCmd.AddCommand(clientcmd.NewQueueCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewAccountCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewWaitTimeCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewTokenCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("WAITLINE_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
