package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joe/validate-sheets/internal/config"
	"github.com/joe/validate-sheets/pkg/errors"
	"github.com/joe/validate-sheets/pkg/sheetcheck"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title()))
	b.WriteString("\n")

	switch m.phase {
	case "confirm":
		b.WriteString(m.viewConfirm())
	case "uploading":
		b.WriteString(m.viewUploading())
	case "validating":
		b.WriteString(m.viewValidating())
	case "complete":
		b.WriteString(m.viewComplete())
	case "done":
		b.WriteString(m.viewDone())
	case "error":
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpLine()))
	b.WriteString("\n")

	return b.String()
}

func (m Model) title() string {
	if m.config.Variant == config.Excel {
		return "Excel Analyse"
	}

	return "BAG Adresvalidatie"
}

func (m Model) viewConfirm() string {
	content := fmt.Sprintf("%s %s\n%s %s",
		labelStyle.Render("Bestand:"),
		valueStyle.Render(m.fileName),
		labelStyle.Render("Grootte:"),
		valueStyle.Render(sheetcheck.FormatSize(m.fileSize)),
	)

	return boxStyle.Render(content)
}

func (m Model) viewUploading() string {
	return fmt.Sprintf("%s Uploaden %s\n\n%s",
		m.spinner.View(),
		valueStyle.Render(m.fileName),
		m.bar.ViewAs(float64(m.uploadPercent)/100),
	)
}

func (m Model) viewValidating() string {
	var b strings.Builder

	phase := m.snapshot.Phase
	if phase == "" {
		phase = "Valideren"
	}

	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), valueStyle.Render(phase))
	b.WriteString(m.bar.ViewAs(float64(m.snapshot.Progress) / 100))

	if m.snapshot.TotalCount > 0 {
		fmt.Fprintf(&b, "\n\n%s %d / %d adressen",
			labelStyle.Render("Verwerkt:"),
			m.snapshot.ProcessedCount,
			m.snapshot.TotalCount,
		)
	}

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	b.WriteString(successStyle.Render("✓ Validatie voltooid"))
	fmt.Fprintf(&b, "\n\n%s %s", labelStyle.Render("Resultaat:"), valueStyle.Render(m.downloadName))

	if m.downloadErr != nil {
		fmt.Fprintf(&b, "\n\n%s", errorStyle.Render(m.downloadErr.UserMessage))
	}

	return b.String()
}

func (m Model) viewDone() string {
	return fmt.Sprintf("%s\n\n%s %s",
		successStyle.Render("✓ Resultaat opgeslagen"),
		labelStyle.Render("Bestand:"),
		valueStyle.Render(m.downloadPath),
	)
}

func (m Model) viewError() string {
	var b strings.Builder

	message := "Er is een onbekende fout opgetreden."
	if m.appErr != nil {
		message = m.appErr.UserMessage
	}

	b.WriteString(errorStyle.Render("✗ " + message))

	if suggestion := m.suggestion(); suggestion != "" {
		fmt.Fprintf(&b, "\n\n%s", dimStyle.Render(suggestion))
	}

	return b.String()
}

func (m Model) suggestion() string {
	if m.appErr == nil {
		return ""
	}

	switch m.appErr.SuggestedAction {
	case errors.ActionRetry:
		return "Probeer het opnieuw."
	case errors.ActionWait:
		return "Wacht even en probeer het dan opnieuw."
	case errors.ActionFixFile:
		return "Controleer het bestand en probeer opnieuw."
	case errors.ActionReset:
		return "Begin opnieuw met een ander bestand."
	default:
		return ""
	}
}

func (m Model) helpLine() string {
	switch m.phase {
	case "confirm":
		return "enter: start validatie • q: afsluiten"
	case "complete":
		return "enter/d: download resultaat • q: afsluiten"
	case "done":
		return "d: opnieuw downloaden • enter/q: afsluiten"
	case "error":
		if m.engine.Machine.CanRetry() {
			return "r: opnieuw proberen • enter/q: afsluiten"
		}

		return "enter/q: afsluiten"
	default:
		return "q: afbreken"
	}
}
