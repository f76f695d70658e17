package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// columnPadding is the space between columns of a plain table.
const columnPadding = "   "

// NewPlainTable creates a kubectl-style table writer without box-drawing
// characters. Headers are upper-cased; pass noHeaders to omit them.
func NewPlainTable(output io.Writer, noHeaders bool, headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(output)

	style := table.StyleDefault
	style.Options = table.OptionsNoBordersAndSeparators
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = columnPadding
	style.Format.Header = text.FormatUpper
	t.SetStyle(style)

	if !noHeaders && len(headers) > 0 {
		row := make(table.Row, len(headers))
		for i, h := range headers {
			row[i] = h
		}
		t.AppendHeader(row)
	}
	return t
}

// NewKeyValueTable creates a rounded two-column table for showing the fields
// of a single object.
func NewKeyValueTable(output io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(output)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"KEY", "VALUE"})
	return t
}

// NullValue is the placeholder printed for a null value in a table.
func NullValue() string {
	return text.FgHiBlack.Sprint("<none>")
}
