// Package client talks to the remote record collection over HTTP. It maps
// the five collection operations onto requests and normalizes every failure
// into the models error taxonomy. It never retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"recordsync/internal/platform/config"
	"recordsync/internal/platform/logger"
	"recordsync/internal/platform/metrics"
	"recordsync/internal/records/models"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 10 << 20
	tracerName      = "recordsync/internal/records/client"

	// RequestIDHeader is set on every outgoing request.
	RequestIDHeader = "X-Request-ID"
)

const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpRemove = "remove"
)

// Client is the typed wrapper around the record collection endpoint.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is left
// as provided.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New builds a Client for the collection at baseURL, e.g.
// "https://host/api/records". The base URL is required.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL must include a host, got %q", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.Discard(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Discard()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c, nil
}

// NewFromConfig builds a Client from environment-derived configuration.
// Options apply after the configured timeout.
func NewFromConfig(cfg config.Client, opts ...Option) (*Client, error) {
	return New(cfg.BaseURL, append([]Option{WithTimeout(cfg.Timeout)}, opts...)...)
}

// BaseURL returns the collection endpoint this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]models.Record, error) {
	var records []models.Record
	err := c.call(ctx, OpList, http.MethodGet, "", nil, func(body []byte) (err error) {
		records, err = parseRecords(OpList, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, id models.RecordID) (models.Record, error) {
	if id.IsZero() {
		return models.Record{}, models.NewNotFoundError(OpGet, id)
	}
	return c.callRecord(ctx, OpGet, http.MethodGet, id, nil)
}

// Create posts a new record and returns it with its server-assigned id.
func (c *Client) Create(ctx context.Context, fields models.Fields) (models.Record, error) {
	return c.callRecord(ctx, OpCreate, http.MethodPost, "", fields)
}

// Update replaces the record with the full field set (PUT semantics, not a
// partial patch).
func (c *Client) Update(ctx context.Context, id models.RecordID, fields models.Fields) (models.Record, error) {
	if id.IsZero() {
		return models.Record{}, models.NewNotFoundError(OpUpdate, id)
	}
	return c.callRecord(ctx, OpUpdate, http.MethodPut, id, fields)
}

// Remove deletes a record. The caller has already confirmed intent. A
// record that is already gone counts as removed.
func (c *Client) Remove(ctx context.Context, id models.RecordID) error {
	if id.IsZero() {
		return models.NewNotFoundError(OpRemove, id)
	}
	return c.call(ctx, OpRemove, http.MethodDelete, id, nil, nil)
}

func (c *Client) callRecord(ctx context.Context, op, method string, id models.RecordID, payload any) (models.Record, error) {
	var record models.Record
	err := c.call(ctx, op, method, id, payload, func(body []byte) (err error) {
		record, err = parseRecord(op, body)
		return err
	})
	if err != nil {
		return models.Record{}, err
	}
	return record, nil
}

// call performs one request, classifies the answer, and decodes a
// successful body. Every call ends in exactly one span, one metric
// observation, and one log line.
func (c *Client) call(ctx context.Context, op, method string, id models.RecordID, payload any, decode func([]byte) error) error {
	start := time.Now()
	requestID := uuid.NewString()
	target := c.resourceURL(id.String())

	ctx, span := c.tracer.Start(ctx, "records."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target),
			attribute.String("records.request_id", requestID),
		),
	)
	defer span.End()

	status, body, err := c.send(ctx, op, method, target, requestID, payload)
	if err == nil {
		err = classifyStatus(op, id, status, body)
	}
	if err == nil && decode != nil {
		err = decode(body)
	}

	elapsed := time.Since(start)
	outcome := "ok"
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		outcome = string(models.GetCategory(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.metrics.ObserveClientRequest(op, outcome, elapsed)
	c.logOutcome(ctx, op, method, requestID, id.String(), status, elapsed, err)
	return err
}

// send returns the status and body of one request. Only failures to get an
// HTTP answer at all are errors here.
func (c *Client) send(ctx context.Context, op, method, target, requestID string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, models.NewTransportError(op, 0, "encode request body", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, models.NewTransportError(op, 0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, networkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, models.NewTransportError(op, resp.StatusCode, "read response body", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) logOutcome(ctx context.Context, op, method, requestID, id string, status int, d time.Duration, err error) {
	attrs := []any{
		"op", op,
		"method", method,
		"request_id", requestID,
		"status", status,
		"duration_ms", d.Milliseconds(),
	}
	if id != "" {
		attrs = append(attrs, "record_id", id)
	}
	if err != nil {
		attrs = append(attrs, "category", string(models.GetCategory(err)), "error", err.Error())
		c.logger.WarnContext(ctx, "record store call failed", attrs...)
		return
	}
	c.logger.DebugContext(ctx, "record store call", attrs...)
}

func (c *Client) resourceURL(id string) string {
	if id == "" {
		return c.baseURL.String()
	}
	return c.baseURL.JoinPath(url.PathEscape(id)).String()
}

func networkError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewTransportError(op, 0, "request timed out", err)
	case errors.Is(err, context.Canceled):
		return models.NewTransportError(op, 0, "request canceled", err)
	default:
		return models.NewTransportError(op, 0, "record store unreachable", err)
	}
}
