package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cafe-receipt-bridge/internal/config"
	"cafe-receipt-bridge/internal/httpapi"
	"cafe-receipt-bridge/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	cfgPath string
	envFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "receipts",
		Short:         "Print café invoices, tickets and revenue reports on a thermal printer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", opts.envFile, err)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "config.toml", "path to the TOML config")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before config env overrides")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newPrintCmd(opts))
	return cmd
}

// loadConfig falls back to defaults when the file does not exist yet.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP bridge the till web app talks to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.FilePath, cfg.Logging.ConsoleVerbose)
			if err != nil {
				return fmt.Errorf("logging: %w", err)
			}
			defer logger.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := httpapi.NewServer(cfg, opts.cfgPath, logger)
			if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Failure(err, "server stopped")
				return err
			}
			return nil
		},
	}
}
