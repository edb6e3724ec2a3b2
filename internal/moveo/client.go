// Package moveo fetches conversation records from the Moveo platform API.
package moveo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tiagoarodrigues55/moveo-report/internal/model"
	"github.com/tiagoarodrigues55/moveo-report/pkg/logger"
	"github.com/tiagoarodrigues55/moveo-report/pkg/metrics"
)

const (
	defaultPageSize       = 400
	defaultTimeout        = 30 * time.Second
	defaultMaxRetryTime   = 20 * time.Second
	defaultInitialBackoff = 500 * time.Millisecond
	maxBodyBytes          = 64 << 20
)

var tracer = otel.Tracer("github.com/tiagoarodrigues55/moveo-report/internal/moveo")

// APIError is a non-success HTTP response from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("moveo API returned status %d: %s", e.StatusCode, body)
}

// retryable reports whether the response status is worth another attempt.
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ClientConfig holds fetch tuning. Zero values select defaults.
type ClientConfig struct {
	PageSize       int
	Timeout        time.Duration
	MaxRetryTime   time.Duration
	InitialBackoff time.Duration
	HTTPClient     *http.Client
}

// Desk identifies whose conversations to fetch and how to authenticate.
type Desk struct {
	BaseURL     string
	DeskID      string
	APIKey      string
	AccountSlug string
}

// Client retrieves conversations page by page.
type Client struct {
	http           *http.Client
	pageSize       int
	maxRetryTime   time.Duration
	initialBackoff time.Duration
	logger         *logger.Logger
}

// NewClient creates a platform client.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	c := &Client{
		http:           cfg.HTTPClient,
		pageSize:       cfg.PageSize,
		maxRetryTime:   cfg.MaxRetryTime,
		initialBackoff: cfg.InitialBackoff,
		logger:         log,
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.maxRetryTime <= 0 {
		c.maxRetryTime = defaultMaxRetryTime
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = defaultInitialBackoff
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	return c
}

// ListConversations returns every conversation created inside window.
//
// The platform lists newest first, so paging stops at the first record older
// than window.Start. Records without a readable creation time are always kept.
func (c *Client) ListConversations(ctx context.Context, desk Desk, window Window) ([]model.Conversation, error) {
	ctx, span := tracer.Start(ctx, "moveo.ListConversations", trace.WithAttributes(
		attribute.String("moveo.account", desk.AccountSlug),
		attribute.String("moveo.window.start", window.Start.Format(time.RFC3339)),
		attribute.String("moveo.window.end", window.End.Format(time.RFC3339)),
	))
	defer span.End()

	log := c.logger.With(zap.String("account_slug", desk.AccountSlug))

	var (
		out     []model.Conversation
		cursor  string
		undated int
	)
	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, failSpan(span, err)
		}

		p, err := c.fetchPage(ctx, desk, cursor, pageNum)
		if err != nil {
			return nil, failSpan(span, fmt.Errorf("failed to fetch page %d: %w", pageNum, err))
		}
		if len(p.records) == 0 {
			break
		}

		reachedStart := false
		for _, r := range p.records {
			conv := decodeConversation(r)
			if conv.CreatedAt == nil {
				undated++
				out = append(out, conv)
				continue
			}
			if conv.CreatedAt.Before(window.Start) {
				reachedStart = true
				break
			}
			if !conv.CreatedAt.After(window.End) {
				out = append(out, conv)
			}
		}

		log.Debug("fetched conversation page",
			zap.Int("page", pageNum),
			zap.Int("records", len(p.records)),
			zap.Int("kept_total", len(out)),
		)

		if reachedStart || p.nextCursor == "" {
			break
		}
		if p.nextCursor == cursor {
			log.Warn("platform returned the same cursor twice, stopping", zap.String("cursor", cursor))
			break
		}
		cursor = p.nextCursor
	}

	if undated > 0 {
		log.Warn("conversations without creation time included", zap.Int("count", undated))
	}
	span.SetAttributes(attribute.Int("moveo.conversations", len(out)))

	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, desk Desk, cursor string, pageNum int) (page, error) {
	ctx, span := tracer.Start(ctx, "moveo.fetchPage", trace.WithAttributes(
		attribute.String("moveo.account", desk.AccountSlug),
		attribute.Int("moveo.page", pageNum),
	))
	defer span.End()

	endpoint, err := c.pageURL(desk, cursor)
	if err != nil {
		return page{}, failSpan(span, err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialBackoff
	bo.MaxElapsedTime = c.maxRetryTime

	body, err := backoff.RetryNotifyWithData(
		func() ([]byte, error) { return c.get(ctx, desk, endpoint) },
		backoff.WithContext(bo, ctx),
		func(err error, wait time.Duration) {
			metrics.UpstreamRetriesTotal.WithLabelValues(desk.AccountSlug).Inc()
			c.logger.Warn("retrying conversation page",
				zap.String("account_slug", desk.AccountSlug),
				zap.Int("page", pageNum),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		},
	)
	if err != nil {
		return page{}, failSpan(span, err)
	}
	metrics.UpstreamPagesTotal.WithLabelValues(desk.AccountSlug).Inc()

	p, err := parsePage(body)
	if err != nil {
		return page{}, failSpan(span, err)
	}
	span.SetAttributes(attribute.Int("moveo.records", len(p.records)))
	return p, nil
}

func (c *Client) pageURL(desk Desk, cursor string) (string, error) {
	base := strings.TrimRight(desk.BaseURL, "/")
	u, err := url.Parse(base + "/api/v1/desks/" + url.PathEscape(desk.DeskID) + "/conversations")
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", desk.BaseURL, err)
	}

	q := u.Query()
	q.Set("account_slug", desk.AccountSlug)
	q.Set("limit", strconv.Itoa(c.pageSize))
	if cursor != "" {
		q.Set("next_cursor", cursor)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// get performs one attempt. Errors not worth retrying are wrapped in
// backoff.Permanent.
func (c *Client) get(ctx context.Context, desk Desk, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "apikey "+desk.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(desk.AccountSlug, "error", time.Since(start).Seconds())
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.RecordUpstreamRequest(desk.AccountSlug, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		if apiErr.retryable() {
			return nil, apiErr
		}
		return nil, backoff.Permanent(apiErr)
	}

	return body, nil
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
