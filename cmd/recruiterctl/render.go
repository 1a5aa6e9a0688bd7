package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/realtime"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/service"
)

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func renderDashboard(w io.Writer, page service.DashboardPage) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Email", "Openness", "Conscientiousness", "Extraversion", "Agreeableness", "Neuroticism"})
	for _, p := range page.Rows {
		table.Append([]string{
			p.Name,
			p.Email,
			formatScore(p.Openness),
			formatScore(p.Conscientiousness),
			formatScore(p.Extraversion),
			formatScore(p.Agreeableness),
			formatScore(p.Neuroticism),
		})
	}
	table.Render()
	fmt.Fprintf(w, "page %d (size %d), %d matching candidates\n", page.Page, page.PageSize, page.TotalCount)
}

func renderSnapshot(w io.Writer, snap domain.AggregateSnapshot) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Trait", "Average"})
	for _, name := range domain.TraitNames {
		table.Append([]string{name, formatScore(snap.TraitAverages[name])})
	}
	table.Render()
	fmt.Fprintf(w, "sample count: %d\n", snap.SampleCount)
}

func renderProfile(w io.Writer, p domain.PersonalityProfile) {
	color.New(color.FgCyan).Fprintf(w, "%s <%s>\n", p.Name, p.Email)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Trait", "Score"})
	for _, name := range domain.TraitNames {
		v, _ := p.Get(name)
		table.Append([]string{name, formatScore(v)})
	}
	table.Render()
}

func renderEvent(w io.Writer, ev domain.ProfileUpdated) {
	label := color.New(color.FgYellow).Sprint("UPDATED")
	if ev.Created {
		label = color.New(color.FgGreen).Sprint("NEW")
	}
	p := ev.Profile
	fmt.Fprintf(w, "%s %s %s <%s> O=%s C=%s E=%s A=%s N=%s\n",
		ev.Timestamp.Local().Format(time.TimeOnly),
		label,
		p.Name,
		p.Email,
		formatScore(p.Openness),
		formatScore(p.Conscientiousness),
		formatScore(p.Extraversion),
		formatScore(p.Agreeableness),
		formatScore(p.Neuroticism),
	)
}

func renderState(w io.Writer, state realtime.State, err error) {
	switch {
	case err != nil:
		color.New(color.FgRed).Fprintf(w, "feed %s: %v\n", state, err)
	case state == realtime.StateOpen:
		color.New(color.FgCyan).Fprintf(w, "feed %s, waiting for submissions\n", state)
	default:
		color.New(color.Faint).Fprintf(w, "feed %s\n", state)
	}
}
