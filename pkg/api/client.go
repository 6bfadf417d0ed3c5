// Package api is the single chokepoint for all traffic to the spreadsheet
// validation backend.
//
// Every response travels through one decode path: success envelopes
// {"success": true, "data": ...} are unwrapped to their data payload, binary
// downloads pass through unchanged, and every failure - connection error,
// timeout, non-2xx status, malformed envelope - resolves to exactly one
// normalized *errors.AppError. Callers never see a raw transport error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/joe/validate-sheets/pkg/errors"
)

// Exported constants.
const (
	// BasePath is the backend API mount point.
	BasePath = "/api/v1"

	// RequestTimeout is the fixed per-request timeout. The much longer
	// processing watchdog lives in the progress channel, not here.
	RequestTimeout = 30 * time.Second
)

// maxErrorBody bounds how much of an error response is read for mapping.
const maxErrorBody = 1 << 20

// Client talks to the validation backend. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// New creates a Client for the backend at baseURL. A nil logger disables
// request logging.
func New(baseURL string, logger *log.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: RequestTimeout},
		logger:     logger,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProgressSocketURL returns the WebSocket endpoint for live progress on the
// given session, derived from the HTTP base URL.
func (c *Client) ProgressSocketURL(sessionID string) string {
	socketURL := c.baseURL + BasePath + "/ws/progress/" + url.PathEscape(sessionID)

	switch {
	case strings.HasPrefix(socketURL, "https://"):
		return "wss://" + strings.TrimPrefix(socketURL, "https://")
	case strings.HasPrefix(socketURL, "http://"):
		return "ws://" + strings.TrimPrefix(socketURL, "http://")
	default:
		return socketURL
	}
}

// doJSON performs one JSON round trip: request body marshaled when non-nil,
// envelope unwrapped, out populated from the data payload. The returned
// error is always a *errors.AppError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.AsAppError(err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+BasePath+path, reader)
	if err != nil {
		return errors.AsAppError(err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// send executes a prepared request and decodes the response through the
// envelope. All failure shapes funnel into the error mapper here.
func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.logRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.FromTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errors.FromTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.FromResponse(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	return decodeEnvelope(raw, out)
}

// decodeEnvelope unwraps {"success": true, "data": T} to T. Payloads
// without the wrapper decode directly; this keeps the mock and the deployed
// backend interchangeable.
func decodeEnvelope(raw []byte, out any) error {
	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Success != nil && *envelope.Success {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.AsAppError(err)
		}

		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.AsAppError(err)
	}

	return nil
}

func (c *Client) logRequest(req *http.Request) {
	if c.logger == nil {
		return
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Msg("api request")
}
