package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fastscape/internal/core"
	"fastscape/internal/sims/landscape"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	groupStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// RunSummary is everything the terminal report shows about a finished run.
type RunSummary struct {
	Title      string
	Parameters core.ParameterSnapshot
	History    []landscape.StepStats
	State      landscape.State
	Elapsed    time.Duration
	Outputs    []string
}

// Report renders the summary: parameters by group, final statistics and a
// chart of mean elevation over the run.
func Report(w io.Writer, s RunSummary) error {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(s.Title)) + "\n")

	for _, g := range s.Parameters.Groups {
		b.WriteString(groupStyle.Render(g.Name) + "\n")
		for _, p := range g.Params {
			v := p.Value
			if p.Unit != "" {
				v += " " + p.Unit
			}
			b.WriteString(line(p.Label, v))
		}
		b.WriteString("\n")
	}

	b.WriteString(groupStyle.Render("Result") + "\n")
	b.WriteString(line("State", s.State.String()))
	b.WriteString(line("Wall time", s.Elapsed.Round(time.Millisecond).String()))
	if n := len(s.History); n > 0 {
		last := s.History[n-1]
		b.WriteString(line("Steps", fmt.Sprintf("%d", last.Step)))
		b.WriteString(line("Time", fmt.Sprintf("%g yr", last.Time)))
		b.WriteString(line("Mean elevation", fmt.Sprintf("%.3f m", last.MeanElevation)))
		b.WriteString(line("Max elevation", fmt.Sprintf("%.3f m", last.MaxElevation)))
		b.WriteString(line("Relief", fmt.Sprintf("%.3f m", last.Relief)))
		b.WriteString(line("Max drainage area", fmt.Sprintf("%.4g m2", last.MaxArea)))
	}
	for _, o := range s.Outputs {
		b.WriteString(line("Wrote", o))
	}

	if len(s.History) > 1 {
		mean := make([]float64, len(s.History))
		for i, h := range s.History {
			mean[i] = h.MeanElevation
		}
		chart := asciigraph.Plot(mean, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("Mean elevation (m)"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func line(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}
