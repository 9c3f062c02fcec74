// Package render formats comparison reports for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"runbaseline/internal/service"
	"runbaseline/internal/store"
)

// Renderer draws comparison reports.
type Renderer struct {
	units Units
}

// New creates a renderer using the given units.
func New(units Units) *Renderer {
	return &Renderer{units: units}
}

// Report renders the run, its baseline and what changed.
func (r *Renderer) Report(activity *store.Activity, report *service.Report) string {
	var b strings.Builder

	title := fmt.Sprintf("%s · %s", activity.Name, activity.StartDate.Format("Mon Jan 2, 2006"))
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	cmp := report.Comparison
	baseline := []string{
		cardTitleStyle.Render("Baseline"),
		r.metricRow("Distance", r.units.FormatDistance(activity.Distance)),
		r.metricRow("Time", FormatDuration(activity.ElapsedTime)),
		r.metricRow("Pace", r.units.FormatSpeedAsPace(activity.AverageSpeed)),
		r.metricRow("Usual pace", r.units.FormatSpeedAsPace(cmp.Baseline.Pace)),
		r.metricRow("Heart rate", formatHR(activity.AverageHeartrate)),
		r.metricRow("Usual heart rate", formatHR(cmp.Baseline.HR)),
		r.metricRow("Comparable runs", fmt.Sprintf("%d", cmp.Baseline.SampleSize)),
	}
	if cmp.Deltas.Drift != nil {
		baseline = append(baseline, r.metricRow("Drift vs usual", formatPercent(cmp.Deltas.Drift)))
	}
	if cmp.Deltas.Pacing != nil {
		baseline = append(baseline, r.metricRow("Pacing vs usual", formatPercent(cmp.Deltas.Pacing)))
	}
	if cmp.Baseline.SampleSize == 0 {
		baseline = append(baseline, mutedStyle.Render("No similar runs in the last year yet."))
	}
	if cmp.FromCache {
		baseline = append(baseline, mutedStyle.Render("cached until "+cmp.ExpiresAt.Format("Jan 2 15:04")))
	}

	left := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, baseline...))
	right := cardStyle.Render(r.changesCard(report))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	if len(cmp.ComparableRuns) > 0 {
		b.WriteString(r.comparablesTable(cmp.ComparableRuns))
	}
	return b.String()
}

func (r *Renderer) changesCard(report *service.Report) string {
	lines := []string{cardTitleStyle.Render("What changed")}

	lines = append(lines, tableHeaderStyle.Render("vs comparable runs"))
	lines = append(lines, r.changeLines(report.WhatChanged.VsComparableMedian)...)

	if report.Route != nil {
		lines = append(lines, tableHeaderStyle.Render("vs last run on "+report.Route.RouteID))
		lines = append(lines, r.changeLines(report.WhatChanged.VsLastSameRoute)...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) changeLines(changes []service.Change) []string {
	if len(changes) == 0 {
		return []string{mutedStyle.Render("  nothing to compare")}
	}
	lines := make([]string, len(changes))
	for i, c := range changes {
		lines[i] = r.metricRow("  "+c.Metric, styleChange(c))
	}
	return lines
}

func (r *Renderer) comparablesTable(runs []service.ComparableRun) string {
	rows := []string{tableHeaderStyle.Render(fmt.Sprintf("%-12s %-10s %-12s %-8s %s", "Date", "Distance", "Pace", "HR", "Match"))}
	for _, run := range runs {
		rows = append(rows, fmt.Sprintf("%-12s %-10s %-12s %-8s %.0f%%",
			run.StartDate.Format("Jan 02 2006"),
			r.units.FormatDistance(run.Distance),
			r.units.FormatSpeedAsPace(run.AverageSpeed),
			formatHR(run.AverageHeartrate),
			run.SimilarityScore*100,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (r *Renderer) metricRow(label, value string) string {
	return metricLabelStyle.Render(label) + metricValueStyle.Render(value)
}

func styleChange(c service.Change) string {
	text := fmt.Sprintf("%+.1f%%", c.Change)
	switch c.Direction {
	case service.DirectionBetter:
		return betterStyle.Render("▲ " + text)
	case service.DirectionWorse:
		return worseStyle.Render("▼ " + text)
	default:
		return neutralStyle.Render("● " + text)
	}
}
