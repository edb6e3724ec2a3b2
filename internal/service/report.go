// Package service provides business logic for conversation reporting.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tiagoarodrigues55/moveo-report/internal/aggregate"
	"github.com/tiagoarodrigues55/moveo-report/internal/config"
	"github.com/tiagoarodrigues55/moveo-report/internal/model"
	"github.com/tiagoarodrigues55/moveo-report/internal/moveo"
	"github.com/tiagoarodrigues55/moveo-report/pkg/logger"
	"github.com/tiagoarodrigues55/moveo-report/pkg/metrics"
)

// ErrTenantNotFound is returned for an account slug with no configuration.
var ErrTenantNotFound = errors.New("account not found")

// Fetcher retrieves the conversations of one desk inside a window.
type Fetcher interface {
	ListConversations(ctx context.Context, desk moveo.Desk, window moveo.Window) ([]model.Conversation, error)
}

// ReportConfig echoes the tenant settings a report was computed with.
type ReportConfig struct {
	TagKey      string `json:"tag_key"`
	ERVVariable string `json:"erv_variable"`
	DisplayName string `json:"display_name"`
}

// ConversationReport is the response of a report request.
type ConversationReport struct {
	Total       int              `json:"total"`
	Period      moveo.Period     `json:"period"`
	Stats       aggregate.Report `json:"stats"`
	AccountSlug string           `json:"account_slug"`
	Config      ReportConfig     `json:"config"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Account is the public view of a configured tenant.
type Account struct {
	Slug        string `json:"account_slug"`
	DisplayName string `json:"display_name"`
}

// Fetched is a raw fetch result before aggregation.
type Fetched struct {
	Tenant        config.Tenant
	Period        moveo.Period
	Window        moveo.Window
	Conversations []model.Conversation
}

// ReportService builds per-account conversation reports. Every call fetches
// fresh data; nothing is cached between requests.
type ReportService struct {
	tenants *config.Registry
	fetcher Fetcher
	logger  *logger.Logger
	now     func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(tenants *config.Registry, fetcher Fetcher, log *logger.Logger) *ReportService {
	return &ReportService{
		tenants: tenants,
		fetcher: fetcher,
		logger:  log,
		now:     time.Now,
	}
}

// Accounts lists the configured accounts ordered by slug.
func (s *ReportService) Accounts() []Account {
	tenants := s.tenants.List()
	out := make([]Account, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, Account{Slug: t.Slug, DisplayName: t.DisplayName})
	}
	return out
}

// Fetch retrieves the conversations of an account for a period.
func (s *ReportService) Fetch(ctx context.Context, slug string, period moveo.Period) (*Fetched, error) {
	tenant, ok := s.tenants.Lookup(slug)
	if !ok {
		return nil, ErrTenantNotFound
	}

	window := moveo.WindowFor(period, s.now())
	desk := moveo.Desk{
		BaseURL:     tenant.BaseURL,
		DeskID:      tenant.DeskID,
		APIKey:      tenant.APIKey,
		AccountSlug: tenant.Slug,
	}

	convs, err := s.fetcher.ListConversations(ctx, desk, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversations for %s: %w", slug, err)
	}

	return &Fetched{Tenant: tenant, Period: period, Window: window, Conversations: convs}, nil
}

// Generate fetches and aggregates the conversations of an account.
func (s *ReportService) Generate(ctx context.Context, slug string, period moveo.Period) (*ConversationReport, error) {
	start := time.Now()
	log := s.logger.With(zap.String("account_slug", slug), zap.String("period", string(period)))

	fetched, err := s.Fetch(ctx, slug, period)
	if err != nil {
		if !errors.Is(err, ErrTenantNotFound) {
			metrics.RecordReport(slug, string(period), "error", time.Since(start).Seconds(), 0)
		}
		return nil, err
	}

	report := s.Build(fetched)
	metrics.RecordReport(slug, string(period), "success", time.Since(start).Seconds(), report.Total)

	log.Info("report generated",
		zap.Int("conversations", report.Total),
		zap.Duration("duration", time.Since(start)),
	)

	return report, nil
}

// Build aggregates an already fetched set of conversations.
func (s *ReportService) Build(f *Fetched) *ConversationReport {
	return &ConversationReport{
		Total:       len(f.Conversations),
		Period:      f.Period,
		Stats:       aggregate.Aggregate(f.Conversations, f.Tenant.TenantConfig),
		AccountSlug: f.Tenant.Slug,
		Config: ReportConfig{
			TagKey:      f.Tenant.TagKey,
			ERVVariable: f.Tenant.ERVVariable,
			DisplayName: f.Tenant.DisplayName,
		},
		GeneratedAt: s.now().UTC(),
	}
}
