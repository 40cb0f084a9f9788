// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt renders the shell's prompt: the current working
// directory in a distinguishing style followed by "$ ". The config
// layer's prompt.style "ascii" always selects the plain ASCII "$ ";
// otherwise color output respects the color.force override, NO_COLOR,
// and the terminal's capability, falling back to "$ " when no color
// profile is available.
package prompt

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/morganforge/goshell/internal/config"
)

// cwdStyle renders the working-directory segment of the prompt.
var cwdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)

// Renderer produces the prompt string shown before every read.
type Renderer struct {
	color bool
}

// NewRenderer decides whether to render in color based on the config's
// prompt.style and color.force settings, the NO_COLOR convention, and
// whether stdout is a terminal.
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{color: colorEnabled(cfg)}
}

func colorEnabled(cfg *config.Config) bool {
	if cfg != nil {
		if cfg.Prompt.Style == "ascii" {
			return false
		}
		switch cfg.Color.Force {
		case "on":
			return true
		case "off":
			return false
		}
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// Render returns the prompt string for the given working directory.
func (r *Renderer) Render(cwd string) string {
	if !r.color {
		return "$ "
	}
	return cwdStyle.Render(cwd) + " $ "
}

// DisplayWidth returns the rune display width of a rendered prompt's
// plain-text form (ANSI codes excluded), i.e. the column count the styled
// prompt occupies on screen.
func DisplayWidth(cwd string) int {
	return runewidth.StringWidth(cwd) + len(" $ ")
}
