package runner

import (
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteSummary renders the records and failures of rep as tables.
func WriteSummary(w io.Writer, rep *Report) {
	if rep == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Name", "Headline", "About"})
	for i, rec := range rep.Result.Records() {
		t.AppendRow(table.Row{
			i + 1,
			orNA(rec.Name),
			preview(orNA(rec.Headline), 48),
			humanize.Comma(int64(len([]rune(rec.About)))) + " chars",
		})
	}
	t.AppendFooter(table.Row{"", "Scraped", strconv.Itoa(rep.Result.Len()) + "/" + strconv.Itoa(rep.Attempted), rep.Duration.Round(time.Millisecond).String()})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(rep.Failures) == 0 {
		return
	}
	f := table.NewWriter()
	f.SetOutputMirror(w)
	f.AppendHeader(table.Row{"#", "Username", "Error"})
	for _, fe := range rep.Failures {
		f.AppendRow(table.Row{fe.Index + 1, fe.Username, preview(fe.Err.Error(), 72)})
	}
	f.SetStyle(table.StyleRounded)
	f.Render()
}
