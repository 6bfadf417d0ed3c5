//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joe/validate-sheets/internal/config"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

func TestVariantString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v        config.Variant
		expected string
	}{
		{config.BAG, "bag"},
		{config.Excel, "excel"},
		{config.Variant(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.expected {
			t.Errorf("Variant(%d).String() = %q, want %q", tt.v, got, tt.expected)
		}
	}
}

func TestVariantUnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected config.Variant
		wantErr  bool
	}{
		{"bag", config.BAG, false},
		{"address", config.BAG, false},
		{"excel", config.Excel, false},
		{"analyzer", config.Excel, false},
		{"BAG", config.BAG, false},
		{"invalid", config.BAG, true},
	}

	for _, tt := range tests {
		var v config.Variant

		err := v.UnmarshalText([]byte(tt.input))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}

		if !tt.wantErr && v != tt.expected {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.input, v, tt.expected)
		}
	}
}

func TestVariantRules(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(config.BAG.AllowedExtensions()).To(Equal([]string{".xlsx"}))
	g.Expect(config.Excel.AllowedExtensions()).To(Equal([]string{".xlsx", ".xls"}))
	g.Expect(config.BAG.DownloadPrefix()).To(Equal("bag_validated_"))
	g.Expect(config.Excel.DownloadPrefix()).To(Equal("analyzed_"))
}

func TestTransportUnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected config.Transport
		wantErr  bool
	}{
		{"websocket", config.WebSocket, false},
		{"ws", config.WebSocket, false},
		{"polling", config.Polling, false},
		{"poll", config.Polling, false},
		{"carrier-pigeon", config.WebSocket, true},
	}

	for _, tt := range tests {
		var tr config.Transport

		err := tr.UnmarshalText([]byte(tt.input))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}

		if !tt.wantErr && tr != tt.expected {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.input, tr, tt.expected)
		}
	}
}

func tempSheet(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "adressen.xlsx")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	return path
}

func TestPostProcessConfig_Valid(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg, err := config.PostProcessConfig(&config.Config{
		File:              tempSheet(t),
		ServerURL:         "http://localhost:8000/",
		MaxSimilarResults: 5,
	})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.ServerURL).To(Equal("http://localhost:8000"), "trailing slash should be trimmed")
}

func TestPostProcessConfig_MissingFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := config.PostProcessConfig(&config.Config{
		ServerURL:         "http://localhost:8000",
		MaxSimilarResults: 5,
	})

	g.Expect(err).To(MatchError(ContainSubstring("input file is required")))
}

func TestPostProcessConfig_NonexistentFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := config.PostProcessConfig(&config.Config{
		File:              filepath.Join(t.TempDir(), "missing.xlsx"),
		ServerURL:         "http://localhost:8000",
		MaxSimilarResults: 5,
	})

	g.Expect(err).To(MatchError(ContainSubstring("does not exist")))
}

func TestPostProcessConfig_DirectoryAsFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := config.PostProcessConfig(&config.Config{
		File:              t.TempDir(),
		ServerURL:         "http://localhost:8000",
		MaxSimilarResults: 5,
	})

	g.Expect(err).To(MatchError(ContainSubstring("is a directory")))
}

func TestPostProcessConfig_BadServerURL(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := config.PostProcessConfig(&config.Config{
		File:              tempSheet(t),
		ServerURL:         "localhost:8000",
		MaxSimilarResults: 5,
	})

	g.Expect(err).To(MatchError(ContainSubstring("http:// or https://")))
}

func TestPostProcessConfig_BadMaxSimilar(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := config.PostProcessConfig(&config.Config{
		File:              tempSheet(t),
		ServerURL:         "http://localhost:8000",
		MaxSimilarResults: 0,
	})

	g.Expect(err).To(MatchError(ContainSubstring("max similar results")))
}

func TestPostProcessConfig_BadOutputDir(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := config.PostProcessConfig(&config.Config{
		File:              tempSheet(t),
		ServerURL:         "http://localhost:8000",
		MaxSimilarResults: 5,
		OutputDir:         filepath.Join(t.TempDir(), "nope"),
	})

	g.Expect(err).To(MatchError(ContainSubstring("output directory does not exist")))
}

func TestValidationConfigDefaults(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := &config.Config{MaxSimilarResults: 5}
	vc := cfg.ValidationConfig()

	g.Expect(vc.StrictMode).To(BeFalse())
	g.Expect(vc.MaxSimilarResults).To(Equal(5))
	g.Expect(vc.CaseSensitivePlaces).To(BeFalse())
	g.Expect(vc.AllowAbbreviations).To(BeTrue())
}
