package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/datalink/internal/cli/output"
	"github.com/leapstack-labs/datalink/internal/link"
	"github.com/leapstack-labs/datalink/pkg/grid"
)

// renderGrid writes a table in the requested format.
func renderGrid(w io.Writer, t *grid.Table, format string) error {
	switch format {
	case "json":
		return renderJSON(w, t)
	case "csv":
		return renderCSV(w, t)
	case "md", "markdown":
		return renderMarkdown(w, t)
	default:
		return renderTable(w, t)
	}
}

func renderTable(w io.Writer, t *grid.Table) error {
	if t.RowCount() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	cols := t.Columns()

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	tw.AppendHeader(headerRow)

	for _, rowMap := range t.GetRows() {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatCell(rowMap[col])
		}
		tw.AppendRow(row)
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", t.RowCount())
	return nil
}

func renderJSON(w io.Writer, t *grid.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func renderCSV(w io.Writer, t *grid.Table) error {
	cols := t.Columns()
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, rowMap := range t.GetRows() {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = escapeCSV(formatCell(rowMap[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, t *grid.Table) error {
	if t.RowCount() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	cols := t.Columns()
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))

	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, rowMap := range t.GetRows() {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = formatCell(rowMap[col])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case *big.Int:
		return val.String()
	case []any, map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// renderResult writes a backend reply. Record replies get their table
// entries rendered as grids and scalar entries as key/value lines.
func renderResult(r *output.Renderer, res link.Result, format string) error {
	rec := res.Record()
	if rec == nil {
		if res.Data == nil {
			r.Println("(no data)")
			return nil
		}
		if s, ok := res.Data.(string); ok {
			if tbl, ok := parseTablePayload(s); ok {
				return renderGrid(r.Writer(), tbl, format)
			}
		}
		r.Printf("%v\n", res.Data)
		return nil
	}
	return renderRecord(r, rec, format)
}

// parseTablePayload interprets a raw JSON-array payload as table rows.
func parseTablePayload(s string) (*grid.Table, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	tbl := grid.NewTable()
	if err := json.Unmarshal([]byte(trimmed), tbl); err != nil {
		return nil, false
	}
	return tbl, true
}

func renderRecord(r *output.Renderer, rec *grid.Record, format string) error {
	if format == "json" {
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	styles := r.Styles()
	for _, key := range rec.Keys() {
		switch v := rec.Get(key).(type) {
		case *grid.Table:
			r.Println(styles.Bold.Render(key + ":"))
			if err := renderGrid(r.Writer(), v, format); err != nil {
				return err
			}
		case nil:
			r.Printf("%s: %s\n", styles.Bold.Render(key), styles.Muted.Render("null"))
		default:
			r.Printf("%s: %v\n", styles.Bold.Render(key), v)
		}
	}
	return nil
}
