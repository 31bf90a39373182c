// Package cli renders command output for the terminal using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#5B8DEF")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or low confidence.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent text.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)
	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)

	// CategoryStyle highlights a predicted category.
	CategoryStyle = lipgloss.NewStyle().Bold(true)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle pads table cells.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
)

// LowConfidence is the level below which results are rendered as warnings.
const LowConfidence = 0.5

const barWidth = 10

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatTitle formats a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

// ConfidenceBar draws confidence as a fixed-width bar followed by the value.
func ConfidenceBar(confidence float64) string {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	filled := int(confidence*barWidth + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	style := SuccessStyle
	if confidence < LowConfidence {
		style = WarningStyle
	}
	return style.Render(bar) + fmt.Sprintf(" %.2f", confidence)
}

// FormatResult renders one categorization on a single line.
func FormatResult(merchantText string, result model.CategorizationResult) string {
	var b strings.Builder
	b.WriteString(merchantText)
	b.WriteString(" → ")
	b.WriteString(CategoryStyle.Render(string(result.Category)))
	b.WriteString("  ")
	b.WriteString(ConfidenceBar(result.Confidence))
	if result.Refined {
		b.WriteString(SubtleStyle.Render(" (refined)"))
	}
	if len(result.Alternatives) > 0 {
		b.WriteString(SubtleStyle.Render("  also: " + strings.Join(model.Strings(result.Alternatives), ", ")))
	}
	return b.String()
}

// RenderTable lays out rows under a styled header. Columns are padded to the
// widest cell.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	cells := func(values []string, style lipgloss.Style) string {
		rendered := make([]string, len(widths))
		for i := range widths {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			rendered[i] = style.Width(widths[i] + 2).Render(v)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	}

	lines := []string{cells(headers, TableHeaderStyle)}
	for _, row := range rows {
		lines = append(lines, cells(row, TableCellStyle))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
