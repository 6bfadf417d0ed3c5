package api

// ValidationConfig is the set of processing toggles sent with the validate
// request. It is immutable once a validation run starts; the engine copies
// it when the run begins.
type ValidationConfig struct {
	StrictMode          bool `json:"strict_mode"`
	MaxSimilarResults   int  `json:"max_similar_results"`
	CaseSensitivePlaces bool `json:"case_sensitive_places"`
	AllowAbbreviations  bool `json:"allow_abbreviations"`
}

// DefaultValidationConfig returns the backend's documented defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		StrictMode:          false,
		MaxSimilarResults:   5,
		CaseSensitivePlaces: false,
		AllowAbbreviations:  true,
	}
}

// UploadResult is the payload of a successful upload.
type UploadResult struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Filename  string `json:"filename"`
}

// ValidateResult confirms that processing has been enqueued. Status is
// always "processing"; completion is observed through the progress channel,
// never through this call.
type ValidateResult struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

// StatusResult is one full status record from the polling endpoint.
type StatusResult struct {
	SessionID      string `json:"session_id"`
	Status         string `json:"status"`
	Progress       int    `json:"progress"`
	Phase          string `json:"phase"`
	ProcessedCount int    `json:"processed_count"`
	TotalCount     int    `json:"total_count"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
}

// CleanupResult confirms a session cleanup.
type CleanupResult struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// HealthResult is the backend health check payload.
type HealthResult struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version"`
}
