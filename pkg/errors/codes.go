package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is the structured error payload inside the backend error envelope
// {"error": {"code", "message", "details", "request_id"}}.
type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// codeMapping describes how one backend error code translates to an AppError.
type codeMapping struct {
	kind        Kind
	message     string
	recoverable bool
	action      SuggestedAction
	status      int
}

// errorCodeMap is the fixed translation table for backend error codes.
var errorCodeMap = map[string]codeMapping{
	// User uploaded something that is not an .xlsx file.
	"INVALID_FILE_TYPE": {
		kind:        KindValidation,
		message:     "Alleen .xlsx bestanden zijn toegestaan",
		recoverable: false,
		action:      ActionFixFile,
		status:      400,
	},
	// Workbook is missing required columns or has an invalid layout.
	"EXCEL_STRUCTURE_ERROR": {
		kind:        KindValidation,
		message:     "Excel bestand heeft niet de juiste structuur. Controleer de vereiste kolommen.",
		recoverable: false,
		action:      ActionFixFile,
		status:      400,
	},
	// Invalid validation configuration parameters.
	"VALIDATION_ERROR": {
		kind:        KindValidation,
		message:     "Ongeldige configuratie. Probeer opnieuw.",
		recoverable: false,
		action:      ActionReset,
		status:      400,
	},
	// Session expired or the session id is unknown to the backend.
	"FILE_NOT_FOUND": {
		kind:        KindAPI,
		message:     "Sessie niet gevonden. Start een nieuwe validatie.",
		recoverable: false,
		action:      ActionReset,
		status:      404,
	},
	"RATE_LIMIT_EXCEEDED": {
		kind:        KindAPI,
		message:     "Te veel verzoeken. Wacht een minuut en probeer opnieuw.",
		recoverable: true,
		action:      ActionWait,
		status:      429,
	},
	"INTERNAL_SERVER_ERROR": {
		kind:        KindAPI,
		message:     MsgServerError,
		recoverable: true,
		action:      ActionRetry,
		status:      500,
	},
}

// FromAPIError translates a structured backend error into an AppError using
// the fixed code table. Unknown codes fall back to KindUnknown with the code
// and request id preserved in TechnicalDetails for diagnosability.
func FromAPIError(apiErr APIError, httpStatus int) *AppError {
	mapping, ok := errorCodeMap[apiErr.Code]
	if !ok {
		return &AppError{
			Kind:             KindUnknown,
			UserMessage:      MsgUnknown,
			TechnicalDetails: fmt.Sprintf("Error code: %s, Request ID: %s", apiErr.Code, apiErr.RequestID),
			HTTPStatus:       httpStatus,
			Recoverable:      true,
			SuggestedAction:  ActionRetry,
		}
	}

	status := httpStatus
	if status == 0 {
		status = mapping.status
	}

	return &AppError{
		Kind:             mapping.kind,
		UserMessage:      mapping.message,
		TechnicalDetails: buildDetails(apiErr),
		HTTPStatus:       status,
		Recoverable:      mapping.recoverable,
		SuggestedAction:  mapping.action,
	}
}

// buildDetails assembles the diagnostic detail string for a structured error.
// The request id always comes first so it is easy to grep in support logs.
func buildDetails(apiErr APIError) string {
	parts := []string{
		"Request ID: " + apiErr.RequestID,
		"Error Code: " + apiErr.Code,
	}

	if apiErr.Message != "" {
		parts = append(parts, "API Message: "+apiErr.Message)
	}

	if len(apiErr.Details) > 0 {
		if raw, err := json.Marshal(apiErr.Details); err == nil {
			parts = append(parts, "Details: "+string(raw))
		}
	}

	return strings.Join(parts, " | ")
}
