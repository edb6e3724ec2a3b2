// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tiagoarodrigues55/moveo-report/internal/middleware"
	"github.com/tiagoarodrigues55/moveo-report/internal/moveo"
	"github.com/tiagoarodrigues55/moveo-report/internal/service"
	"github.com/tiagoarodrigues55/moveo-report/pkg/logger"
)

// ReportHandler handles account and report endpoints.
type ReportHandler struct {
	service *service.ReportService
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc *service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  log,
	}
}

// Accounts handles GET /api/v1/accounts
func (h *ReportHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Accounts())
}

// Conversations handles GET /api/v1/accounts/:account_slug/conversations
func (h *ReportHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "account_slug")

	if err := middleware.ValidateAccountSlug(slug); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period, err := moveo.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Generate(ctx, slug, period)
	if err != nil {
		status, msg := h.errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithRequest(middleware.GetCorrelationID(ctx), slug).Error("failed to generate report",
				zap.String("period", string(period)),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// errorStatus maps a Generate error to a response. Anything past tenant
// lookup failed while talking to the platform.
func (h *ReportHandler) errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTenantNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, context.Canceled):
		return http.StatusInternalServerError, "request cancelled"
	default:
		return http.StatusBadGateway, "failed to fetch conversations"
	}
}
