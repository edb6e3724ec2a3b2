// Package cli implements the report command line tool.
package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tiagoarodrigues55/moveo-report/internal/config"
	"github.com/tiagoarodrigues55/moveo-report/internal/moveo"
	"github.com/tiagoarodrigues55/moveo-report/internal/service"
	"github.com/tiagoarodrigues55/moveo-report/pkg/logger"
)

// app holds what the subcommands share once the root command has loaded
// configuration.
type app struct {
	tenantsFile string
	logLevel    string

	cfg     *config.Config
	log     *logger.Logger
	tenants *config.Registry
	reports *service.ReportService
}

// NewRootCmd builds the report command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "report",
		Short: "Conversation reports for Moveo accounts",
		Long: `report fetches conversations of a configured Moveo account and prints
the interaction funnel, tag presence and ERV totals.

Accounts are read from the tenants file (TENANTS_FILE, default tenants.yaml).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.log != nil {
				_ = a.log.Sync()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.tenantsFile, "tenants", "", "tenants file (default $TENANTS_FILE or tenants.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (default $LOG_LEVEL or info)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newAccountsCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))

	return rootCmd
}

// Execute runs the root command until it finishes or ctx is cancelled.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) load() error {
	_ = godotenv.Load()

	a.cfg = config.Load()
	if a.tenantsFile == "" {
		a.tenantsFile = a.cfg.TenantsFile
	}
	if a.logLevel == "" {
		a.logLevel = a.cfg.LogLevel
	}

	log, err := logger.NewDevelopment(a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = log

	a.tenants, err = config.LoadTenants(a.tenantsFile, a.cfg.MoveoBaseURL)
	if err != nil {
		return fmt.Errorf("failed to load tenants: %w", err)
	}

	client := moveo.NewClient(moveo.ClientConfig{
		PageSize:     a.cfg.MoveoPageSize,
		Timeout:      a.cfg.MoveoTimeout,
		MaxRetryTime: a.cfg.MoveoMaxRetryTime,
	}, a.log)
	a.reports = service.NewReportService(a.tenants, client, a.log)

	return nil
}
