package api

import (
	"context"
	"net/http"
	"net/url"
)

// StartValidation asks the backend to begin processing an uploaded session.
// This is fire-and-confirm: a successful return only means the work was
// enqueued, never that it finished.
func (c *Client) StartValidation(ctx context.Context, sessionID string, cfg ValidationConfig) (*ValidateResult, error) {
	payload := struct {
		Config ValidationConfig `json:"config"`
	}{Config: cfg}

	var result ValidateResult
	if err := c.doJSON(ctx, http.MethodPost, "/validate/"+url.PathEscape(sessionID), payload, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Status fetches the current status record for a session. Used by the
// polling progress transport.
func (c *Client) Status(ctx context.Context, sessionID string) (*StatusResult, error) {
	var result StatusResult
	if err := c.doJSON(ctx, http.MethodGet, "/status/"+url.PathEscape(sessionID), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Cleanup asks the backend to discard a session's server-side artifacts.
// Callers treat failures as log-only: cleanup must never disturb the
// user-visible workflow.
func (c *Client) Cleanup(ctx context.Context, sessionID string) (*CleanupResult, error) {
	var result CleanupResult
	if err := c.doJSON(ctx, http.MethodDelete, "/cleanup/"+url.PathEscape(sessionID), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*HealthResult, error) {
	var result HealthResult
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
