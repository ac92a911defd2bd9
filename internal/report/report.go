// Package report renders analysis results as terminal tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/layers"
)

// TableRenderer writes go-pretty tables to out.
type TableRenderer struct {
	out io.Writer
}

// NewTableRenderer creates a renderer writing to out.
func NewTableRenderer(out io.Writer) *TableRenderer {
	return &TableRenderer{out: out}
}

func (r *TableRenderer) newWriter(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

// Summary prints one row per pipeline run.
func (r *TableRenderer) Summary(results []*analysis.Result) {
	t := r.newWriter("Cohorts")
	t.AppendHeader(table.Row{"Cohort", "Run", "Sessions", "Interactions", "Characteristic", "Clusters", "Moves"})

	var sessions, interactions, points, clusters, moves int
	for _, res := range results {
		nInteractions := len(res.Interactions())
		t.AppendRow(table.Row{
			res.Cohort,
			res.RunID,
			len(res.Sessions),
			nInteractions,
			len(res.CharacteristicPoints),
			len(res.Clusters),
			len(res.Moves),
		})
		sessions += len(res.Sessions)
		interactions += nInteractions
		points += len(res.CharacteristicPoints)
		clusters += len(res.Clusters)
		moves += len(res.Moves)
	}

	t.AppendFooter(table.Row{"Total", "", sessions, interactions, points, clusters, moves})
	t.Render()
}

// Clusters prints a result's clusters.
func (r *TableRenderer) Clusters(res *analysis.Result) {
	t := r.newWriter(fmt.Sprintf("Clusters (%s)", res.Cohort))
	t.AppendHeader(table.Row{"ID", "Zoom", "Center X", "Center Y", "Radius", "Members"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, c := range res.Clusters {
		t.AppendRow(table.Row{
			c.ID,
			c.Zoom,
			fmt.Sprintf("%.2f", c.Center.X()),
			fmt.Sprintf("%.2f", c.Center.Y()),
			fmt.Sprintf("%.1f", c.Radius),
			c.Members,
		})
	}
	t.Render()
}

// Moves prints a result's aggregated moves, heaviest first.
func (r *TableRenderer) Moves(res *analysis.Result) {
	t := r.newWriter(fmt.Sprintf("Moves (%s)", res.Cohort))
	t.AppendHeader(table.Row{"From", "To", "Weight", "Zoom Diff"})
	t.SortBy([]table.SortBy{{Number: 3, Mode: table.DscNumeric}})

	for _, m := range res.Moves {
		zoomDiff := ""
		start, okStart := res.Cluster(m.Start)
		end, okEnd := res.Cluster(m.End)
		if okStart && okEnd {
			zoomDiff = fmt.Sprintf("%+d", end.Zoom-start.Zoom)
		}
		t.AppendRow(table.Row{m.Start, m.End, m.Weight(), zoomDiff})
	}
	t.Render()
}

// Catalog prints the layer catalog.
func (r *TableRenderer) Catalog(catalog []layers.Layer) {
	t := r.newWriter("Layers")
	t.AppendHeader(table.Row{"ID", "Title", "Kind", "Default", "Actions"})

	for _, l := range catalog {
		actions := make([]string, 0, len(l.Actions))
		for _, a := range l.Actions {
			actions = append(actions, a.ID)
		}
		t.AppendRow(table.Row{l.ID, l.Title, l.Kind.String(), l.DefaultAction(), strings.Join(actions, ", ")})
	}
	t.Render()
}
