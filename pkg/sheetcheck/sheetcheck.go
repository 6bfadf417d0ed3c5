// Package sheetcheck validates spreadsheet files on the client side before
// any network call is made, and derives download filenames for processed
// results.
package sheetcheck

import (
	"fmt"
	"strings"

	"github.com/joe/validate-sheets/pkg/errors"
)

// Exported constants.
const (
	// MaxFileSize is the upload size limit: 10 MB.
	MaxFileSize = 10 * 1024 * 1024

	// PrefixAnalyzed is the download filename prefix for the generic
	// analyzer variant.
	PrefixAnalyzed = "analyzed_"

	// PrefixValidated is the download filename prefix for the address
	// validation variant.
	PrefixValidated = "bag_validated_"

	// DownloadExtension is appended to every derived download filename,
	// regardless of the original extension.
	DownloadExtension = ".xlsx"
)

// Check validates a file by name and size against the variant's permitted
// extension set. It returns nil for a valid file and a validation AppError
// describing the first failed rule otherwise. No network traffic may happen
// before this passes.
func Check(name string, size int64, allowedExts []string) *errors.AppError {
	if size == 0 {
		return errors.New(errors.KindValidation, "Bestand is leeg.")
	}

	lower := strings.ToLower(name)

	lastDot := strings.LastIndex(lower, ".")
	if lastDot == -1 {
		return errors.New(errors.KindValidation,
			fmt.Sprintf("Bestand heeft geen extensie. Upload een %s bestand.", extensionList(allowedExts)))
	}

	ext := lower[lastDot:]
	if !contains(allowedExts, ext) {
		return errors.New(errors.KindValidation,
			fmt.Sprintf("Dit bestandstype wordt niet ondersteund. Upload een %s bestand.", extensionList(allowedExts)))
	}

	if size > MaxFileSize {
		sizeMB := float64(size) / 1024 / 1024

		return errors.New(errors.KindValidation,
			fmt.Sprintf("Bestand te groot (%.2f MB). Het maximum is 10 MB.", sizeMB))
	}

	return nil
}

// DownloadFilename derives the filename a processed result is saved under:
// the original extension is stripped, every character outside [A-Za-z0-9_-]
// becomes an underscore (one-for-one, not collapsed), the variant prefix is
// prepended, and .xlsx is always appended.
//
// Applying this to its own output is stable apart from the doubled prefix;
// that is documented behavior.
func DownloadFilename(original, prefix string) string {
	base := original
	if lastDot := strings.LastIndex(original, "."); lastDot > 0 {
		base = original[:lastDot]
	}

	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, base)

	return prefix + sanitized + DownloadExtension
}

// FormatSize renders a byte count for display: plain bytes below 1 KB,
// otherwise KB or MB with two decimals.
func FormatSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}

	kb := float64(bytes) / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.2f KB", kb)
	}

	return fmt.Sprintf("%.2f MB", kb/1024)
}

// extensionList joins permitted extensions for use in a user message,
// e.g. ".xlsx of .xls".
func extensionList(exts []string) string {
	return strings.Join(exts, " of ")
}

func contains(list []string, item string) bool {
	for _, entry := range list {
		if entry == item {
			return true
		}
	}

	return false
}
