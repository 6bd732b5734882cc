package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/storage"
)

// UI styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(22)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	rejectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
)

// displayWelcomeBanner shows the interactive mode header
func displayWelcomeBanner(w io.Writer, cfg config.Config) {
	header := fmt.Sprintf("🚀 Depot %s | 🌐 %s", version, cfg.Endpoint.BaseURL)
	fmt.Fprintln(w, headerStyle.Render(header))
	fmt.Fprintln(w)
}

func row(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label)+" "+value)
}

// showConfig displays the effective configuration. The access code is
// masked.
func showConfig(w io.Writer, cfg config.Config, path string) {
	fmt.Fprintln(w, sectionStyle.Render("📋 Depot Configuration"))
	if path != "" {
		row(w, "Config File:", path)
	}
	row(w, "Base URL:", cfg.Endpoint.BaseURL)
	row(w, "Access Code:", maskSecret(cfg.Endpoint.AccessCode))
	row(w, "Access Code Param:", cfg.Endpoint.AccessCodeParam)
	row(w, "Order Path:", cfg.OrderPath)
	row(w, "Account Path:", cfg.AccountPath)
	row(w, "Upload Path:", cfg.UploadPath)
	row(w, "Upload Progress:", fmt.Sprintf("%t", cfg.Upload.ShowProgressMessage))
	row(w, "Upload Format:", cfg.Upload.ResponseFormat)
	timeout := "none"
	if cfg.RequestTimeout > 0 {
		timeout = cfg.RequestTimeout.String()
	}
	row(w, "Request Timeout:", timeout)
	row(w, "Data Directory:", cfg.DataDir)
	row(w, "History:", fmt.Sprintf("%t", cfg.HistoryEnabled))
	row(w, "Debug Mode:", fmt.Sprintf("%t", cfg.Debug))

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render("📦 Tracked Items"))
	for _, it := range cfg.TrackedItems {
		row(w, it.Item, it.Target)
	}
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return pendingStyle.Render("not configured")
	case len(s) <= 4:
		return "****"
	default:
		return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
	}
}

// showHistory lists journal entries, newest first.
func showHistory(w io.Writer, entries []storage.Interaction) {
	if len(entries) == 0 {
		fmt.Fprintln(w, pendingStyle.Render("No history yet."))
		return
	}

	fmt.Fprintln(w, sectionStyle.Render("🕘 Recent Activity"))
	for _, e := range entries {
		var style lipgloss.Style
		switch e.Outcome {
		case storage.OutcomeOK:
			style = completedStyle
		case storage.OutcomeRejected:
			style = rejectedStyle
		default:
			style = errorStyle
		}
		line := fmt.Sprintf("[%s] %-7s %-9s %s",
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Kind,
			style.Render(e.Outcome),
			e.Subject,
		)
		if e.Detail != "" {
			line += " - " + truncateString(e.Detail, 60)
		}
		fmt.Fprintln(w, line)
	}
}

// truncateString shortens s to maxLen runes, ending with "..."
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
