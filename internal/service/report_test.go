package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiagoarodrigues55/moveo-report/internal/config"
	"github.com/tiagoarodrigues55/moveo-report/internal/model"
	"github.com/tiagoarodrigues55/moveo-report/internal/moveo"
	"github.com/tiagoarodrigues55/moveo-report/pkg/logger"
)

type fakeFetcher struct {
	convs  []model.Conversation
	err    error
	desk   moveo.Desk
	window moveo.Window
}

func (f *fakeFetcher) ListConversations(_ context.Context, desk moveo.Desk, window moveo.Window) ([]model.Conversation, error) {
	f.desk = desk
	f.window = window
	return f.convs, f.err
}

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, f Fetcher) *ReportService {
	t.Helper()
	reg, err := config.NewRegistry(
		config.Tenant{
			Slug:        "smart-compass",
			DisplayName: "Smart Compass",
			DeskID:      "desk-1",
			APIKey:      "secret",
			TenantConfig: model.TenantConfig{
				TagKey:      "sou_eu",
				ERVVariable: "DEBT_VALUE",
			},
		},
		config.Tenant{
			Slug:         "acme",
			DeskID:       "desk-2",
			APIKey:       "k",
			TenantConfig: model.TenantConfig{TagKey: "sou_eu"},
		},
	)
	require.NoError(t, err)

	svc := NewReportService(reg, f, logger.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestReportService_Generate(t *testing.T) {
	f := &fakeFetcher{convs: []model.Conversation{
		{MessageCount: 5, Context: map[string]any{
			"tags":              []any{"sou_eu"},
			"live_instructions": map[string]any{"DEBT_VALUE": "R$ 100,00"},
		}},
		{MessageCount: 2},
	}}
	svc := newTestService(t, f)

	report, err := svc.Generate(context.Background(), "smart-compass", moveo.PeriodWeek)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, moveo.PeriodWeek, report.Period)
	assert.Equal(t, "smart-compass", report.AccountSlug)
	assert.Equal(t, ReportConfig{TagKey: "sou_eu", ERVVariable: "DEBT_VALUE", DisplayName: "Smart Compass"}, report.Config)
	assert.Equal(t, fixedNow, report.GeneratedAt)

	assert.Equal(t, 2, report.Stats.Interactions.Total.Count)
	assert.Equal(t, 1, report.Stats.Interactions.MoreThan3.Count)
	assert.InDelta(t, 100.0, report.Stats.Interactions.Total.TotalValue, 1e-9)

	assert.Equal(t, "desk-1", f.desk.DeskID)
	assert.Equal(t, "secret", f.desk.APIKey)
	assert.Equal(t, config.DefaultBaseURL, f.desk.BaseURL)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), f.window.Start)
	assert.Equal(t, fixedNow, f.window.End)
}

func TestReportService_EmptyIsValid(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{})

	report, err := svc.Generate(context.Background(), "acme", moveo.PeriodAll)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.Stats.Interactions.Total.Count)
	assert.Equal(t, "acme", report.Config.DisplayName)
}

func TestReportService_UnknownTenant(t *testing.T) {
	f := &fakeFetcher{}
	svc := newTestService(t, f)

	_, err := svc.Generate(context.Background(), "nobody", moveo.PeriodAll)
	assert.ErrorIs(t, err, ErrTenantNotFound)
	assert.Empty(t, f.desk.DeskID, "fetcher must not be called")
}

func TestReportService_FetchErrorWrapped(t *testing.T) {
	upstream := &moveo.APIError{StatusCode: 503, Body: "down"}
	svc := newTestService(t, &fakeFetcher{err: upstream})

	_, err := svc.Generate(context.Background(), "acme", moveo.PeriodMonth)
	require.Error(t, err)

	var apiErr *moveo.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 503, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "acme")
}

func TestReportService_Accounts(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{})
	assert.Equal(t, []Account{
		{Slug: "acme", DisplayName: "acme"},
		{Slug: "smart-compass", DisplayName: "Smart Compass"},
	}, svc.Accounts())
}
