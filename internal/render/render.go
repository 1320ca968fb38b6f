// Package render formats comparisons and search results as terminal tables.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// Row is one statistic of a comparison, formatted for display.
type Row struct {
	Key     string
	Label   string
	Player1 string
	Player2 string
	Delta   string
	Favor   compare.Highlight
}

// Rows formats every field of res in display order.
func Rows(res compare.Result) []Row {
	rows := make([]Row, 0, len(stats.Fields))
	for _, f := range stats.Fields {
		rows = append(rows, Row{
			Key:     f.Key,
			Label:   f.Label,
			Player1: compare.FormatValue(f, f.Get(res.Player1Stats)),
			Player2: compare.FormatValue(f, f.Get(res.Player2Stats)),
			Delta:   compare.FormatDelta(f, f.Get(res.Differential)),
			Favor:   res.Highlights[f.Key],
		})
	}
	return rows
}

// Styles holds the table's lipgloss styles.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Favored lipgloss.Style
	Delta   lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles highlights the favored value in bold green.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Header:  lipgloss.NewStyle().Bold(true).Underline(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Value:   lipgloss.NewStyle(),
		Favored: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Delta:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Muted:   lipgloss.NewStyle().Faint(true),
	}
}

// valueWidth is the minimum width of a value column.
const valueWidth = 10

// Comparison renders res as a titled two-column table with a delta column.
func Comparison(res compare.Result, st Styles) string {
	rows := Rows(res)

	labelW := len("Stat")
	for _, r := range rows {
		labelW = max(labelW, lipgloss.Width(r.Label))
	}
	p1W := max(valueWidth, lipgloss.Width(res.Player1.Name))
	p2W := max(valueWidth, lipgloss.Width(res.Player2.Name))

	cell := func(s lipgloss.Style, w int, align lipgloss.Position, text string) string {
		return s.Width(w).Align(align).Render(text)
	}
	valueStyle := func(favored bool) lipgloss.Style {
		if favored {
			return st.Favored
		}
		return st.Value
	}

	lines := []string{
		st.Title.Render(fmt.Sprintf("%s vs %s", res.Player1.Name, res.Player2.Name)),
		st.Muted.Render(Describe(res)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			cell(st.Header, labelW, lipgloss.Left, "Stat"), "  ",
			cell(st.Header, p1W, lipgloss.Right, res.Player1.Name), "  ",
			cell(st.Header, p2W, lipgloss.Right, res.Player2.Name), "  ",
			cell(st.Header, valueWidth, lipgloss.Right, "Diff"),
		),
	}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			cell(st.Label, labelW, lipgloss.Left, r.Label), "  ",
			cell(valueStyle(r.Favor.Player1), p1W, lipgloss.Right, r.Player1), "  ",
			cell(valueStyle(r.Favor.Player2), p2W, lipgloss.Right, r.Player2), "  ",
			cell(st.Delta, valueWidth, lipgloss.Right, r.Delta),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Describe summarizes the slice a comparison covers, e.g.
// "season 2020-21, postseason, totals".
func Describe(res compare.Result) string {
	mode := "career"
	if res.Mode.Type == compare.ModeSeason {
		mode = "season " + res.Mode.Season
	}
	seasonType := "regular season"
	if res.SeasonType == compare.Postseason {
		seasonType = "postseason"
	}
	basis := "per game"
	if res.Basis == compare.Totals {
		basis = "totals"
	}
	return strings.Join([]string{mode, seasonType, basis}, ", ")
}

// Search renders search results one player per line, active players marked.
func Search(players []stats.PlayerSummary, st Styles) string {
	if len(players) == 0 {
		return st.Muted.Render("no players found")
	}
	idW := 0
	for _, p := range players {
		idW = max(idW, len(fmt.Sprint(p.PlayerID)))
	}
	lines := make([]string, 0, len(players))
	for _, p := range players {
		status := st.Muted.Render("retired")
		if p.Active {
			status = st.Favored.Render("active")
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			st.Label.Width(idW).Align(lipgloss.Right).Render(fmt.Sprint(p.PlayerID)), "  ",
			st.Value.Render(p.Name), "  ",
			status,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
