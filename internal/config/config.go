// Package config handles application configuration and command-line argument parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexflint/go-arg"

	"github.com/joe/validate-sheets/pkg/api"
)

// Variant selects which validation flow the backend runs and which local
// rules apply (permitted extensions, download prefix, required columns).
type Variant int

const (
	// BAG - address validation against the national address registry; .xlsx only
	BAG Variant = iota
	// Excel - generic spreadsheet analysis; accepts .xlsx and .xls
	Excel
)

// String returns the string representation of Variant
func (v Variant) String() string {
	switch v {
	case BAG:
		return "bag"
	case Excel:
		return "excel"
	default:
		return "unknown"
	}
}

// ParseVariant parses a string into a Variant
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "bag", "address":
		return BAG, nil
	case "excel", "analyzer":
		return Excel, nil
	default:
		return BAG, fmt.Errorf("invalid variant: %s (valid: bag, excel)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// AllowedExtensions returns the permitted file extensions for the variant.
func (v Variant) AllowedExtensions() []string {
	if v == Excel {
		return []string{".xlsx", ".xls"}
	}
	return []string{".xlsx"}
}

// DownloadPrefix returns the prefix prepended to derived download filenames.
func (v Variant) DownloadPrefix() string {
	if v == Excel {
		return "analyzed_"
	}
	return "bag_validated_"
}

// Transport selects how progress updates reach the client.
type Transport int

const (
	// WebSocket - persistent connection, live frames
	WebSocket Transport = iota
	// Polling - periodic status requests every 2.5s
	Polling
)

// String returns the string representation of Transport
func (t Transport) String() string {
	switch t {
	case WebSocket:
		return "websocket"
	case Polling:
		return "polling"
	default:
		return "unknown"
	}
}

// ParseTransport parses a string into a Transport
func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(s) {
	case "websocket", "ws":
		return WebSocket, nil
	case "polling", "poll":
		return Polling, nil
	default:
		return WebSocket, fmt.Errorf("invalid transport: %s (valid: websocket, polling)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (t *Transport) UnmarshalText(text []byte) error {
	parsed, err := ParseTransport(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Config holds the application configuration
type Config struct {
	File                string    `arg:"positional" help:"Excel file to upload and validate"`
	ServerURL           string    `arg:"-s,--server" default:"http://localhost:8000" help:"Backend base URL"`
	Variant             Variant   `arg:"--variant" default:"bag" help:"Validation variant: bag|excel (aliases: address|analyzer)"`
	Transport           Transport `arg:"--transport" default:"websocket" help:"Progress transport: websocket|polling (aliases: ws|poll)"`
	OutputDir           string    `arg:"-o,--output" help:"Directory for the downloaded result (default: current directory)"`
	Preflight           bool      `arg:"--preflight" help:"Check required columns locally before uploading"`
	StrictMode          bool      `arg:"--strict" help:"Strict address matching"`
	MaxSimilarResults   int       `arg:"--max-similar" default:"5" help:"Maximum similar results per address"`
	CaseSensitivePlaces bool      `arg:"--case-sensitive-places" help:"Match place names case sensitively"`
	NoAbbreviations     bool      `arg:"--no-abbreviations" help:"Disallow street name abbreviations"`
	LogFile             string    `arg:"--log-file" help:"Write debug logs to this file"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Validates Excel address sheets against the backend validation service with a rich Terminal UI"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "validate-sheets 1.0.0"
}

// ValidationConfig returns the processing toggles to send with the
// validate request.
func (cfg *Config) ValidationConfig() api.ValidationConfig {
	return api.ValidationConfig{
		StrictMode:          cfg.StrictMode,
		MaxSimilarResults:   cfg.MaxSimilarResults,
		CaseSensitivePlaces: cfg.CaseSensitivePlaces,
		AllowAbbreviations:  !cfg.NoAbbreviations,
	}
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{
		ServerURL:         "http://localhost:8000",
		MaxSimilarResults: 5,
	}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}

	if !strings.HasPrefix(cfg.ServerURL, "http://") && !strings.HasPrefix(cfg.ServerURL, "https://") {
		return nil, fmt.Errorf("server URL must start with http:// or https://: %s", cfg.ServerURL)
	}

	if cfg.MaxSimilarResults < 1 {
		return nil, fmt.Errorf("max similar results must be at least 1, got %d", cfg.MaxSimilarResults)
	}

	if err := cfg.ValidateFile(); err != nil {
		return nil, err
	}

	if err := cfg.ValidateOutputDir(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateFile validates that the input file path points at a regular file
func (cfg *Config) ValidateFile() error {
	if cfg.File == "" {
		return fmt.Errorf("input file is required")
	}

	info, err := os.Stat(cfg.File)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", cfg.File)
	}
	if err != nil {
		return fmt.Errorf("cannot access input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input file is a directory: %s", cfg.File)
	}

	return nil
}

// ValidateOutputDir validates the output directory when one is given
func (cfg *Config) ValidateOutputDir() error {
	if cfg.OutputDir == "" {
		return nil
	}

	info, err := os.Stat(cfg.OutputDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", cfg.OutputDir)
	}
	if err != nil {
		return fmt.Errorf("cannot access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory is not a directory: %s", cfg.OutputDir)
	}

	return nil
}
