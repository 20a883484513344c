package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// DefaultSheetsEndpoint is the deployed spreadsheet receiver.
const DefaultSheetsEndpoint = "https://script.google.com/macros/s/AKfycbwpW-GbLMqojth0o3NE75DQsPAfxzvdXvP1TBr60PllbmiWW6oS9S4SozzJGlvURMJOQg/exec"

// Submitter delivers a flat record to the remote sheet.
type Submitter interface {
	Submit(ctx context.Context, record *model.FlatRecord) model.SubmitResult
}

// SheetsClient posts records to the spreadsheet receiver. The receiver's
// response is opaque: a returned request is reported as unconfirmed
// delivery whatever its status code.
type SheetsClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// SheetsClientConfig holds configuration for the sheets client
type SheetsClientConfig struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewSheetsClient creates a new sheets client
func NewSheetsClient(cfg SheetsClientConfig) *SheetsClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultSheetsEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsClient{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "sheets_client")),
	}
}

// Endpoint returns the receiver URL.
func (c *SheetsClient) Endpoint() string { return c.endpoint }

// Submit posts the record as JSON, falling back to a form-encoded body if the
// JSON request fails at the transport level.
func (c *SheetsClient) Submit(ctx context.Context, record *model.FlatRecord) model.SubmitResult {
	log := c.logger.With(slog.String("submission_id", record.SubmissionID()))

	body, err := json.Marshal(record)
	if err != nil {
		return model.SubmitResult{Delivery: model.DeliveryFailed, Error: err.Error(), Err: err}
	}
	status, err := c.post(ctx, "application/json", bytes.NewReader(body))
	if err == nil {
		log.Info("submitted record", slog.String("transport", model.TransportJSON), slog.Int("status", status))
		return model.SubmitResult{
			Delivery:   model.DeliveryUnconfirmed,
			Transport:  model.TransportJSON,
			StatusCode: status,
			Attempts:   1,
		}
	}
	log.Warn("json submission failed, trying form encoding", slog.String("error", err.Error()))

	if ctx.Err() != nil {
		return failed(1, ctx.Err())
	}
	status, err = c.post(ctx, "application/x-www-form-urlencoded", strings.NewReader(record.FormValues().Encode()))
	if err != nil {
		log.Error("all submission transports failed", slog.String("error", err.Error()))
		return failed(2, err)
	}
	log.Info("submitted record", slog.String("transport", model.TransportForm), slog.Int("status", status))
	return model.SubmitResult{
		Delivery:   model.DeliveryUnconfirmed,
		Transport:  model.TransportForm,
		StatusCode: status,
		Attempts:   2,
	}
}

func (c *SheetsClient) post(ctx context.Context, contentType string, body io.Reader) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func failed(attempts int, err error) model.SubmitResult {
	err = fmt.Errorf("submit to sheet: %w", err)
	return model.SubmitResult{
		Delivery: model.DeliveryFailed,
		Attempts: attempts,
		Error:    err.Error(),
		Err:      err,
	}
}
