package sheetcheck

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joe/validate-sheets/pkg/errors"
)

// RequiredColumns is the header set the address validation backend expects
// in the first sheet. The optional preflight checks these locally so a
// structurally broken workbook is caught before the upload round trip.
var RequiredColumns = []string{
	"Baartdiensten",
	"Team",
	"Straat",
	"Huisnummer",
	"Toevoeging",
	"Postcode",
	"Plaats",
	"Mailbox",
}

// PreflightColumns opens the workbook at path and verifies that the first
// sheet's header row contains every required column. It mirrors the
// backend's structure check, producing the same user-facing message, so the
// user gets the verdict without waiting on an upload.
func PreflightColumns(path string, required []string) *errors.AppError {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		appErr := errors.New(errors.KindValidation, "Alleen .xlsx bestanden zijn toegestaan")
		appErr.TechnicalDetails = err.Error()

		return appErr
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)

	rows, err := workbook.Rows(sheet)
	if err != nil {
		appErr := structureError()
		appErr.TechnicalDetails = err.Error()

		return appErr
	}
	defer rows.Close()

	if !rows.Next() {
		appErr := structureError()
		appErr.TechnicalDetails = "first sheet has no header row"

		return appErr
	}

	header, err := rows.Columns()
	if err != nil {
		appErr := structureError()
		appErr.TechnicalDetails = err.Error()

		return appErr
	}

	present := make(map[string]bool, len(header))
	for _, cell := range header {
		present[strings.TrimSpace(cell)] = true
	}

	var missing []string

	for _, column := range required {
		if !present[column] {
			missing = append(missing, column)
		}
	}

	if len(missing) > 0 {
		appErr := structureError()
		appErr.TechnicalDetails = "missing columns: " + strings.Join(missing, ", ")

		return appErr
	}

	return nil
}

func structureError() *errors.AppError {
	appErr := errors.New(errors.KindValidation,
		"Excel bestand heeft niet de juiste structuur. Controleer de vereiste kolommen.")
	appErr.SuggestedAction = errors.ActionFixFile

	return appErr
}
