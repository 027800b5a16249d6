package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hpungsan/platenum/internal/interpret"
	"github.com/hpungsan/platenum/internal/ops"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	numberStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1).Border(lipgloss.RoundedBorder())
	stepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// writeCalculation renders a calculation for humans.
func writeCalculation(w io.Writer, out *ops.CalculateOutput) {
	fmt.Fprintln(w, titleStyle.Render(strings.ToUpper(out.Input)))
	fmt.Fprintln(w, numberStyle.Render(fmt.Sprintf("%d", out.FinalNumber)))
	for _, step := range out.Steps {
		fmt.Fprintln(w, stepStyle.Render("  "+step))
	}
	if out.Interpretation != nil {
		fmt.Fprintln(w)
		writeInterpretation(w, out.Interpretation)
	}
}

// writeInterpretation renders one interpretation record. Advice text is
// printed as-is; markdown emphasis reads fine in a terminal.
func writeInterpretation(w io.Writer, rec *interpret.Record) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%s)", rec.PlanetEnglish, rec.Planet)))
	for _, a := range rec.PositiveAspects {
		fmt.Fprintln(w, goodStyle.Render("  + "+a))
	}
	for _, a := range rec.NegativeAspects {
		fmt.Fprintln(w, badStyle.Render("  - "+a))
	}
	if rec.Advice != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rec.Advice)
	}
	if rec.SuitableFor != "" {
		fmt.Fprintln(w, mutedStyle.Render("Suitable for: "+rec.SuitableFor))
	}
}

// writeHistory renders the history list with the indexes delete and rerun accept.
func writeHistory(w io.Writer, out *ops.HistoryListOutput) {
	if len(out.Items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No history yet."))
		return
	}
	for _, item := range out.Items {
		fmt.Fprintf(w, "%s  %-16s %s  %s\n",
			mutedStyle.Render(fmt.Sprintf("[%d]", item.Index)),
			strings.ToUpper(item.Value),
			titleStyle.Render(fmt.Sprintf("%d", item.FinalNumber)),
			mutedStyle.Render(item.Date.Local().Format("2006-01-02 15:04")),
		)
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Entries are kept for %d days.", out.RetentionDays)))
}
