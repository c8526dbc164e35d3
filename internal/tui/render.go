package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/eugenenazirov/smartpack/internal/engine"
)

const maxBarWidth = 30

// OutcomeMarkdown renders a scan outcome as the markdown card shown in the user view.
func OutcomeMarkdown(o engine.ScanOutcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%s)\n\n", o.Product, o.Material)
	fmt.Fprintf(&sb, "**%s**\n\n", o.Instruction)

	if o.Kind == engine.InstructionRecycle {
		fmt.Fprintf(&sb, "Centros de acopio en %s:\n\n", o.City)
		for _, c := range o.Centers {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
		sb.WriteString("\n")
		if o.Impact != "" {
			fmt.Fprintf(&sb, "> %s\n\n", o.Impact)
		}
	} else {
		sb.WriteString("Beneficios de reutilizar:\n\n")
		for _, b := range o.Benefits {
			fmt.Fprintf(&sb, "- %s\n", b)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "_+%d puntos._ %s\n", o.Points, o.Acknowledged)
	return sb.String()
}

func newRenderer(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// renderMarkdown falls back to the raw markdown when no renderer is available.
func renderMarkdown(r *glamour.TermRenderer, md string) string {
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// BarChart draws one horizontal bar per ranked entry, scaled to the largest count.
func BarChart(title string, ranking []engine.Count) string {
	var sb strings.Builder
	sb.WriteString(subtitleStyle.Render(title))
	sb.WriteString("\n")
	if len(ranking) == 0 {
		sb.WriteString(dimStyle.Render("sin datos"))
		return sb.String()
	}

	labelWidth, maxCount := 0, 0
	for _, c := range ranking {
		labelWidth = max(labelWidth, lipgloss.Width(c.Label))
		maxCount = max(maxCount, c.Count)
	}

	for _, c := range ranking {
		n := 0
		if maxCount > 0 {
			n = c.Count * maxBarWidth / maxCount
		}
		if c.Count > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&sb, "%-*s %s %d\n", labelWidth, c.Label, barStyle.Render(strings.Repeat("█", n)), c.Count)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func tile(label, value string) string {
	return tileStyle.Render(tileLabelStyle.Render(label) + "\n" + tileValueStyle.Render(value))
}

// MetricTiles lays out the report's headline numbers as a grid of bordered tiles.
func MetricTiles(r engine.Report) string {
	topCity := r.TopCity
	if topCity == "" {
		topCity = "-"
	}
	rows := [][]string{
		{
			tile("Total de escaneos", fmt.Sprintf("%d", r.TotalScans)),
			tile("Tasa de reciclaje", fmt.Sprintf("%.1f%%", r.RecyclingRate*100)),
			tile("Ciudad con más escaneos", topCity),
		},
		{
			tile("Energía ahorrada", fmt.Sprintf("%.1f kWh", r.EnergySavedKWh)),
			tile("Agua ahorrada", fmt.Sprintf("%d L", r.WaterSavedLiters)),
			tile("Árboles salvados", fmt.Sprintf("%d", r.TreesSaved)),
		},
		{
			tile("Ahorro en material", formatUSD(r.MaterialSavingsUSD)),
			tile("Ahorro logístico", formatUSD(r.LogisticsSavingsUSD)),
			tile("Ahorro total", formatUSD(r.TotalSavingsUSD)),
		},
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func recommendationLine(rec engine.Recommendation) string {
	if rec.Kind == engine.RecommendationPositive {
		return successStyle.Render("✔ " + rec.Message)
	}
	return warningStyle.Render("⚠ " + rec.Message)
}

func formatUSD(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
