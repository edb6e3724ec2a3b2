package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tiagoarodrigues55/moveo-report/internal/export"
	"github.com/tiagoarodrigues55/moveo-report/internal/model"
	"github.com/tiagoarodrigues55/moveo-report/internal/moveo"
	"github.com/tiagoarodrigues55/moveo-report/internal/service"
)

type statsOptions struct {
	period   string
	dumpPath string
	xlsxPath string
	asJSON   bool
}

func newStatsCmd(a *app) *cobra.Command {
	var opts statsOptions

	cmd := &cobra.Command{
		Use:   "stats [account_slug]",
		Short: "Fetch conversations and print report statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.period, "period", "p", string(moveo.PeriodAll), "look-back window: week, month or all")
	cmd.Flags().StringVar(&opts.dumpPath, "dump", "", "write the fetched conversations as JSON to this file")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "write the report as an XLSX workbook to this file")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON instead of a text summary")

	return cmd
}

func runStats(ctx context.Context, cmd *cobra.Command, a *app, slug string, opts statsOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	period, err := moveo.ParsePeriod(opts.period)
	if err != nil {
		return err
	}

	a.log.Info("fetching conversations",
		zap.String("account_slug", slug),
		zap.String("period", string(period)),
	)

	fetched, err := a.reports.Fetch(ctx, slug, period)
	if err != nil {
		return err
	}
	report := a.reports.Build(fetched)

	if opts.dumpPath != "" {
		if err := dumpConversations(opts.dumpPath, fetched.Conversations); err != nil {
			return err
		}
		a.log.Info("conversations saved", zap.String("file", opts.dumpPath), zap.Int("count", report.Total))
	}

	if opts.xlsxPath != "" {
		if err := writeWorkbook(opts.xlsxPath, report); err != nil {
			return err
		}
		a.log.Info("workbook saved", zap.String("file", opts.xlsxPath))
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printSummary(out, report, fetched.Conversations)
	return nil
}

// dumpConversations writes records exactly as the platform returned them.
func dumpConversations(path string, convs []model.Conversation) error {
	raw := make([]json.RawMessage, 0, len(convs))
	for _, c := range convs {
		if len(c.Raw) > 0 {
			raw = append(raw, c.Raw)
			continue
		}
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode conversation %s: %w", c.ID, err)
		}
		raw = append(raw, b)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode conversations: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeWorkbook(path string, report *service.ConversationReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	meta := export.Meta{
		AccountSlug: report.AccountSlug,
		DisplayName: report.Config.DisplayName,
		Period:      string(report.Period),
		Total:       report.Total,
		GeneratedAt: report.GeneratedAt,
	}
	if err := export.WriteXLSX(f, meta, report.Stats); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
