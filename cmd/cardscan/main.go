package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cardscan/internal/api"
	"cardscan/internal/config"
	"cardscan/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

// rootCmd: cardscan без подкоманды печатает help.
var rootCmd = &cobra.Command{
	Use:   "cardscan",
	Short: "Business card scanner: capture, extract, review and store contacts",
	Long: `cardscan turns photos of business cards into contact records.

A Gemini model reads the card, the user reviews the fields in a form,
and the contact is saved locally (SQLite) or in Postgres. Columns are
configurable at runtime; contacts can be printed, exported to PDF or
appended to a Google Sheet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		logger, err = logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, closeApp, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeApp()
		return api.Run(ctx, ":"+cfg.Port, app)
	},
}

func init() {
	config.BindFlags(rootCmd.PersistentFlags())

	columnsCmd.AddCommand(columnsListCmd, columnsAddCmd, columnsRemoveCmd, columnsRelabelCmd,
		columnsShowCmd, columnsHideCmd, columnsResetCmd)
	exportCmd.AddCommand(exportPDFCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
