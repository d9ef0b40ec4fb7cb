// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders run results and store statistics for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pdiddy/docufetch/internal/aggregate"
	"github.com/pdiddy/docufetch/internal/orchestrate"
	"github.com/pdiddy/docufetch/internal/source"
	"github.com/pdiddy/docufetch/pkg/types"
)

// TitleWidth is the display width titles are cut to in plan tables.
const TitleWidth = 60

// Printer writes tables to Out. Status cells are colored when Color is set.
type Printer struct {
	Out io.Writer

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

// New returns a Printer writing to w.
func New(w io.Writer, colorize bool) *Printer {
	p := &Printer{
		Out:  w,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.dim} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) table(header []string, rows [][]string) error {
	t := tablewriter.NewTable(p.Out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	t.Header(header)
	if err := t.Bulk(rows); err != nil {
		return err
	}
	return t.Render()
}

// status renders an outcome's status cell.
func (p *Printer) status(o types.SourceOutcome) string {
	switch {
	case !o.Requested:
		return p.dim.Sprint("skipped")
	case o.Error != types.ErrorNone:
		return p.bad.Sprint(string(o.Error))
	case o.Unrecorded > 0:
		return p.warn.Sprint("partial")
	default:
		return p.ok.Sprint("ok")
	}
}

// Outcomes writes one row per source of an aggregation run.
func (p *Printer) Outcomes(r aggregate.Result) error {
	rows := make([][]string, 0, len(r.Report))
	for _, o := range r.Report {
		rows = append(rows, []string{
			o.SourceName,
			string(o.Category),
			p.status(o),
			strconv.Itoa(o.HitCount),
			strconv.Itoa(o.New),
			strconv.Itoa(o.Duplicates),
			strconv.Itoa(o.Dropped),
			o.Elapsed.Round(time.Millisecond).String(),
		})
	}
	return p.table([]string{"source", "category", "status", "hits", "new", "seen", "dropped", "time"}, rows)
}

// Plan writes the documents planned for download.
func (p *Printer) Plan(docs []types.Document) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(p.Out, "Nothing new to download")
		return err
	}
	rows := make([][]string, 0, len(docs))
	for i, d := range docs {
		published := ""
		if !d.PublishedAt.IsZero() {
			published = d.PublishedAt.Format("2006-01-02")
		}
		pdf := ""
		if d.PDFURL != "" {
			pdf = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			Truncate(d.Title, TitleWidth),
			d.SourceName,
			published,
			pdf,
		})
	}
	return p.table([]string{"#", "title", "source", "published", "pdf"}, rows)
}

// Summary writes the per-keyword outcomes and batch totals of a run.
func (p *Printer) Summary(s orchestrate.Summary) error {
	for _, r := range s.Results {
		if _, err := fmt.Fprintf(p.Out, "\n%s\n", r.Keyword); err != nil {
			return err
		}
		if err := p.Outcomes(r); err != nil {
			return err
		}
	}
	b := s.Batch
	_, err := fmt.Fprintf(p.Out, "\nRun %s: %d planned, %s downloaded, %s skipped, %s failed, %s in %s\n",
		s.RunID,
		len(s.Plan()),
		p.ok.Sprint(b.Downloaded),
		p.warn.Sprint(b.Skipped),
		p.bad.Sprint(b.Failed),
		humanize.Bytes(uint64(max(b.Bytes, 0))),
		s.Finished.Sub(s.Started).Round(time.Second),
	)
	return err
}

// Stats writes the store statistics.
func (p *Printer) Stats(s orchestrate.Stats) error {
	fmt.Fprintf(p.Out, "Documents:  %d\n", s.Total)
	fmt.Fprintf(p.Out, "Downloaded: %d\n", s.Downloaded)
	fmt.Fprintf(p.Out, "Pending:    %d\n", s.Pending)
	fmt.Fprintf(p.Out, "Disk usage: %s\n", humanize.Bytes(uint64(max(s.Bytes, 0))))
	if !s.FirstSeen.IsZero() {
		fmt.Fprintf(p.Out, "First seen: %s (%s)\n", s.FirstSeen.Format(time.RFC3339), humanize.Time(s.FirstSeen))
		fmt.Fprintf(p.Out, "Last seen:  %s (%s)\n", s.LastSeen.Format(time.RFC3339), humanize.Time(s.LastSeen))
	}
	if len(s.BySource) == 0 {
		return nil
	}

	fmt.Fprintln(p.Out)
	rows := make([][]string, 0, len(s.BySource))
	for _, c := range s.SortedSources() {
		rows = append(rows, []string{c.Name, humanize.Comma(int64(c.Count))})
	}
	if err := p.table([]string{"source", "documents"}, rows); err != nil {
		return err
	}

	fmt.Fprintln(p.Out)
	rows = rows[:0]
	for _, c := range s.SortedCategories() {
		rows = append(rows, []string{c.Name, humanize.Comma(int64(c.Count))})
	}
	return p.table([]string{"category", "documents"}, rows)
}

// Sources writes every registered source with its category and state.
func (p *Printer) Sources(refs []source.Ref) error {
	rows := make([][]string, 0, len(refs))
	for _, r := range refs {
		state := p.dim.Sprint("disabled")
		if r.Enabled {
			state = p.ok.Sprint("enabled")
		}
		rows = append(rows, []string{r.Name(), string(r.Category()), state})
	}
	return p.table([]string{"source", "category", "state"}, rows)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Truncate cuts s to at most width display columns, ending in "...".
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
