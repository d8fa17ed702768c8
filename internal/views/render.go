package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ConsoleData is everything the terminal transport draws in one frame.
type ConsoleData struct {
	Header     string
	Screen     Screen
	Selected   int
	InputView  string
	StatusLine string
	Footer     string
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	buttonStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
	selectedStyle = buttonStyle.BorderForeground(lipgloss.Color("12")).Bold(true)
)

func RenderConsole(data ConsoleData) string {
	body := data.Screen.Text
	if data.Screen.Kind == KindHelp {
		body = RenderMarkdown(body)
	}

	lines := []string{headerStyle.Render(data.Header), panelStyle.Width(58).Render(body)}

	pos := 0
	for _, row := range data.Screen.Buttons {
		cells := make([]string, 0, len(row))
		for _, b := range row {
			style := buttonStyle
			if pos == data.Selected {
				style = selectedStyle
			}
			cells = append(cells, style.Render(b.Label))
			pos++
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	if data.InputView != "" {
		lines = append(lines, data.InputView)
	}
	if data.StatusLine != "" {
		status := statusStyle.Render(data.StatusLine)
		if data.Screen.Kind == KindSaveFailed || strings.Contains(strings.ToLower(data.StatusLine), "error") {
			status = errorStyle.Render(data.StatusLine)
		}
		lines = append(lines, status)
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
