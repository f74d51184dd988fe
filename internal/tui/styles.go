// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     tui
// Description: Shared color palette and styles for terminal output
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	ColorPrimary = lipgloss.Color("#8B5CF6") // Violet
	ColorSuccess = lipgloss.Color("#10B981") // Emerald
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorDimmed  = lipgloss.Color("#374151") // Dark Gray
	ColorText    = lipgloss.Color("#F8FAFC") // Slate 50
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorDimmed).
			Foreground(ColorText).
			Padding(0, 1)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	CodeStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	LocationStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	MessageStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	TabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

	ActiveTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorPrimary).
			Bold(true).
			Underline(true)
)

// Helper functions
func RenderTitle(title string) string {
	return TitleStyle.Render(title)
}

func RenderHelp(help string) string {
	return HelpStyle.Render(help)
}

func RenderSuccess(text string) string {
	return StatusOKStyle.Render(text)
}
