package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"jopa/internal/diag"
	"jopa/internal/driver"
)

// summaryLines renders the run totals, one fact per line.
func summaryLines(res *driver.Result, elapsed time.Duration, styled bool) []string {
	total := res.Totals()
	errs, warns := 0, 0
	for _, d := range res.Diagnostics() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	failedFiles := 0
	for _, f := range res.Files {
		if f.Err != nil {
			failedFiles++
		}
	}

	count := func(style lipgloss.Style, n int, what string) string {
		s := fmt.Sprintf("%d %s", n, what)
		if styled && n > 0 {
			return style.Render(s)
		}
		return s
	}
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	lines := []string{
		fmt.Sprintf("%d files (%d cached, %d broken) in %s", len(res.Files), res.Cached(), failedFiles, elapsed.Round(time.Millisecond)),
		fmt.Sprintf("%d sites: %s, %s, %s", total.Sites,
			count(green, total.Resolved, "resolved"),
			count(red, total.Failed, "failed"),
			count(cyan, total.Deferred, "deferred")),
		fmt.Sprintf("diagnostics: %s, %s", count(red, errs, "errors"), count(yellow, warns, "warnings")),
		"run " + res.RunID,
	}
	return lines
}

// summaryBlock renders the run totals, boxed when fancy.
func summaryBlock(res *driver.Result, elapsed time.Duration, fancy bool) string {
	lines := summaryLines(res, elapsed, fancy)
	if !fancy {
		return strings.Join(lines, "\n")
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render("jopa resolve")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 1)
	return box.Render(title + "\n" + strings.Join(lines, "\n"))
}

// renderSummary prints the run totals after a blank line.
func renderSummary(w io.Writer, res *driver.Result, elapsed time.Duration, fancy bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryBlock(res, elapsed, fancy))
}
