package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Selected, Help lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	SymBullet, SymOK, SymFail, SymCursor string
}

var current = classic()

// SetTheme switches the active theme. Unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			Help:     lipgloss.NewStyle().Faint(true),

			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("13"),

			SymBullet: "◆", SymOK: "✔", SymFail: "✖", SymCursor: "❯ ",
		}
	case "mono":
		plain := lipgloss.NewStyle()
		current = Theme{
			Title: plain.Bold(true), Muted: plain, Accent: plain,
			Success: plain, Error: plain, Selected: plain.Reverse(true), Help: plain,

			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.NoColor{},

			SymBullet: "-", SymOK: "ok", SymFail: "error:", SymCursor: "> ",
		}
	default:
		current = classic()
	}
}

func classic() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Faint(true),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Help:     lipgloss.NewStyle().Faint(true),

		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),

		SymBullet: "•", SymOK: "✔", SymFail: "✖", SymCursor: "> ",
	}
}

// Expose what renderers need
func Current() Theme { return current }
