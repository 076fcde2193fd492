// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomtom215/voodoo-quality/internal/transfer"
)

var (
	successColor = lipgloss.Color("#22C55E")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

func renderExport(path string, exp *transfer.Export) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Export complete"),
		fmt.Sprintf("%d houses written to %s", exp.Rows, path),
		mutedStyle.Render(fmt.Sprintf("%d bytes", len(exp.Data))),
	))
}

func renderImport(res *transfer.Result) string {
	lines := []string{
		titleStyle.Render(res.Message),
		fmt.Sprintf("created %d  updated %d  failed %d", res.Tally.Created, res.Tally.Updated, res.Tally.Failed),
	}
	for _, r := range res.Results {
		if r.Error != "" {
			lines = append(lines, errorStyle.Render(fmt.Sprintf("%s: %s", r.Name, r.Error)))
		}
	}
	lines = append(lines, mutedStyle.Render("import "+res.ID))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderError prints catalog rejection details under the message.
func renderError(err error) string {
	var se *transfer.ServerError
	if !errors.As(err, &se) || len(se.Details) == 0 {
		return errorStyle.Render("error: " + err.Error())
	}
	return errorStyle.Render("error: "+err.Error()) + "\n" +
		mutedStyle.Render(strings.TrimSpace(string(se.Details)))
}
