// Package cli wires the commands for the spendlog binary.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"spendlog/internal/amqp"
	"spendlog/internal/config"
	applog "spendlog/internal/log"
	"spendlog/internal/service"
	"spendlog/internal/storage"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "spendlog",
	Short: "Personal expense tracker",
	Long: `spendlog records personal expenses in SQLite and reports on them.

Expenses carry a date, a fixed category, a positive decimal amount and an
optional description. Besides the plain CRUD commands, the insights and
summary reports aggregate the whole collection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is for local development; absence is fine.
		_ = godotenv.Load()

		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration:\n%w", err)
		}

		logger := applog.New(applog.Config{
			Level:     applog.ParseLevel(cfg.LogLevel),
			Component: applog.ComponentCLI,
		})
		applog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openService builds the expense service the way the serve command does,
// so one-shot commands observe exactly the state the server would.
func openService() (*service.ExpenseService, error) {
	repo, err := openRepository()
	if err != nil {
		return nil, err
	}

	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The store still works without the event stream.
			fmt.Fprintln(os.Stderr, "Warning: event publishing disabled:", err)
		} else {
			events = client
		}
	}

	return service.NewExpenseService(repo, events), nil
}

func openRepository() (service.Repository, error) {
	switch cfg.DataBackend {
	case "memory":
		return storage.NewMemoryRepository(), nil
	default:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open database %s: %w", cfg.SQLiteDBPath, err)
		}
		return repo, nil
	}
}
