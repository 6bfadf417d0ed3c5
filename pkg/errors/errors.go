// Package errors provides normalized, user-presentable errors for the
// validation workflow.
//
// Every failure in the system is converted into exactly one AppError at the
// boundary where it is first detected (the API client). Downstream code never
// sees raw transport errors, HTTP status objects, or decode failures - it only
// stores and displays AppErrors.
//
// Basic usage:
//
//	resp, err := client.Do(req)
//	if err != nil {
//	    return nil, errors.FromTransport(err)
//	}
//	if resp.StatusCode >= 400 {
//	    return nil, errors.FromResponse(resp.StatusCode, body)
//	}
//
// The Kind of an AppError determines how the UI reacts: validation errors
// offer only a reset, while network and api errors offer a retry.
package errors

// Exported constants.
const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindAPI        Kind = "api"
	KindUnknown    Kind = "unknown"

	ActionRetry   SuggestedAction = "retry"
	ActionReset   SuggestedAction = "reset"
	ActionWait    SuggestedAction = "wait"
	ActionFixFile SuggestedAction = "fix-file"
)

// User-facing messages (Dutch, matching the deployed front-end copy).
const (
	MsgNoConnection   = "Geen verbinding met de server. Controleer je internetverbinding."
	MsgTimeout        = "Verzoek duurde te lang. Probeer opnieuw."
	MsgNetworkGeneric = "Kan geen verbinding maken met de server. Probeer opnieuw."
	MsgBadRequest     = "Ongeldige aanvraag"
	MsgServerError    = "Server fout. Ons team is op de hoogte. Probeer later opnieuw."
	MsgUnknown        = "Er is een onbekende fout opgetreden. Probeer opnieuw."
	MsgUnexpected     = "Er is een onverwachte fout opgetreden. Probeer opnieuw."
)

// Kind is the closed set of user-facing error categories.
type Kind string

// SuggestedAction is the recommended user action for recovering from an error.
type SuggestedAction string

// AppError is the single normalized error value used across the workflow.
type AppError struct {
	Kind             Kind
	UserMessage      string          // localized, safe to show to end users
	TechnicalDetails string          // diagnostic only, never shown in production UI
	HTTPStatus       int             // 0 when no HTTP response was involved
	Recoverable      bool            // whether a retry action should be offered
	SuggestedAction  SuggestedAction // recommended recovery action
}

// Error implements the error interface with the user-facing message.
func (e *AppError) Error() string {
	return e.UserMessage
}

// New creates an AppError of the given kind with default recoverability for
// that kind: network and api errors are retryable, validation errors are not,
// and unknown errors offer a retry defensively.
func New(kind Kind, userMessage string) *AppError {
	recoverable := kind != KindValidation

	action := ActionRetry
	if !recoverable {
		action = ActionReset
	}

	return &AppError{
		Kind:            kind,
		UserMessage:     userMessage,
		Recoverable:     recoverable,
		SuggestedAction: action,
	}
}

// NewTimeout creates the AppError for a client-side timeout.
func NewTimeout(details string) *AppError {
	err := New(KindNetwork, MsgTimeout)
	err.TechnicalDetails = details

	return err
}

// AsAppError returns err as an *AppError when it already is one, or wraps it
// into a KindUnknown AppError otherwise. A nil error maps to the same unknown
// bucket without panicking.
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok && appErr != nil {
		return appErr
	}

	unknown := New(KindUnknown, MsgUnexpected)
	if err != nil {
		unknown.TechnicalDetails = err.Error()
	}

	return unknown
}
