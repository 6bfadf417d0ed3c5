package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// FromTransport normalizes a transport-level failure (no HTTP response was
// received) into an AppError. Already-normalized errors pass through
// unchanged so callers can never double-wrap.
func FromTransport(err error) *AppError {
	if err == nil {
		return New(KindUnknown, MsgUnexpected)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if isTimeout(err) {
		return NewTimeout(err.Error())
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		netErr := New(KindNetwork, MsgNoConnection)
		netErr.TechnicalDetails = urlErr.Error()

		return netErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		connErr := New(KindNetwork, MsgNetworkGeneric)
		connErr.TechnicalDetails = netErr.Error()

		return connErr
	}

	// Not an HTTP-layer error at all: a plain runtime failure.
	unknown := New(KindUnknown, MsgUnexpected)
	unknown.TechnicalDetails = err.Error()

	return unknown
}

// FromResponse normalizes a non-2xx HTTP response into an AppError.
//
// A body matching the structured error envelope {"error": {...}} is
// translated through the fixed code table. Anything else branches on the
// status class: 4xx means the input was bad, 5xx means the backend failed,
// everything else is unknown.
func FromResponse(status int, body []byte) *AppError {
	if apiErr, ok := decodeErrorEnvelope(body); ok {
		return FromAPIError(apiErr, status)
	}

	message := extractMessage(body)

	switch {
	case status >= 400 && status < 500:
		if message == "" {
			message = MsgBadRequest
		}

		return &AppError{
			Kind:            KindValidation,
			UserMessage:     message,
			HTTPStatus:      status,
			Recoverable:     false,
			SuggestedAction: ActionReset,
		}
	case status >= 500:
		return &AppError{
			Kind:             KindAPI,
			UserMessage:      MsgServerError,
			TechnicalDetails: message,
			HTTPStatus:       status,
			Recoverable:      true,
			SuggestedAction:  ActionRetry,
		}
	default:
		return &AppError{
			Kind:             KindUnknown,
			UserMessage:      MsgUnknown,
			TechnicalDetails: fmt.Sprintf("unexpected status %d", status),
			HTTPStatus:       status,
			Recoverable:      true,
			SuggestedAction:  ActionRetry,
		}
	}
}

// isTimeout reports whether err represents a client-side timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// decodeErrorEnvelope attempts to decode the structured error envelope.
// Returns false for bodies that are not JSON or lack the error object.
func decodeErrorEnvelope(body []byte) (APIError, bool) {
	var envelope struct {
		Error *APIError `json:"error"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return APIError{}, false
	}

	if envelope.Error.Code == "" {
		return APIError{}, false
	}

	return *envelope.Error, true
}

// extractMessage pulls a human-readable message out of conventional response
// fields, in priority order: message, error, detail.
func extractMessage(body []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}

	for _, key := range []string{"message", "error", "detail"} {
		if value, ok := fields[key].(string); ok && value != "" {
			return value
		}
	}

	return ""
}
