package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/christopherklint97/balancr/internal/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	aheadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	behindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func renderReport(res engine.Result) string {
	var b strings.Builder

	if res.Message != "" {
		b.WriteString(errorStyle.Render(res.Message))
		b.WriteString("\n")
		if res.Snapshot.FetchedAt.IsZero() {
			return b.String()
		}
		b.WriteString(dimStyle.Render("Showing last successful sync:"))
		b.WriteString("\n")
	}

	snap := res.Snapshot
	balance := fmt.Sprintf("%+.1f h", snap.HourBalance)
	if snap.HourBalance < 0 {
		balance = behindStyle.Render(balance)
	} else {
		balance = aheadStyle.Render(balance)
	}

	body := fmt.Sprintf("%s\n\nWorked    %6.1f h\nExpected  %6.1f h\nBalance   %s",
		titleStyle.Render("This month"),
		snap.TotalHours,
		snap.ExpectedHours,
		balance,
	)
	b.WriteString(boxStyle.Render(body))
	b.WriteString("\n")
	if !snap.FetchedAt.IsZero() {
		b.WriteString(dimStyle.Render("synced " + snap.FetchedAt.Format("2006-01-02 15:04")))
		b.WriteString("\n")
	}
	return b.String()
}
