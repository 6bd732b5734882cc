package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	boardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(22)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	unavailableStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F59E0B"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Underline(true)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Padding(0, 1)
)

// Terminal prints page updates as they happen.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Attach streams every update of page to the terminal.
func (t *Terminal) Attach(page *Page) {
	page.OnUpdate(t.Show)
}

// Show prints a single update.
func (t *Terminal) Show(u Update) {
	var line string
	switch u.Kind {
	case UpdateAlert:
		line = alertStyle.Render("⚠ " + u.Alert)
	case UpdateElement:
		line = targetStyle.Render(u.Element.ID) + " " + renderElement(u.Element)
	default:
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, line)
}

// Board prints the elements of page inside a titled box.
func (t *Terminal) Board(title string, elements []Element) {
	var content strings.Builder
	content.WriteString(titleStyle.Render(title))
	content.WriteString("\n")
	for _, e := range elements {
		content.WriteString("\n")
		content.WriteString(targetStyle.Render(e.ID))
		content.WriteString(" ")
		content.WriteString(renderElement(e))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, boardStyle.Render(content.String()))
}

func renderElement(e Element) string {
	if e.Hidden {
		return unavailableStyle.Render("(hidden)")
	}
	if e.Link != nil {
		return textStyle.Render(e.Text) + linkStyle.Render(e.Link.Text) + " " + textStyle.Render(e.Link.Href)
	}
	if strings.HasSuffix(e.Text, unavailable) {
		return unavailableStyle.Render(e.Text)
	}
	return textStyle.Render(e.Text)
}
