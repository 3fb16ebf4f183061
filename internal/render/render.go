// Package render turns projected rows into the three output modes the
// CLI frontend supports: a table, JSON, or a key listing.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"awsquery/internal/filter"
	"awsquery/internal/flatten"
)

// Table writes records as an ASCII table with the given column header
// order, via github.com/olekukonko/tablewriter.
func Table(w io.Writer, records []*flatten.Record, columns []string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoWrapText(false)
	for _, row := range filter.Project(records, columns) {
		table.Append(row)
	}
	table.Render()
}

// JSON writes the records array as JSON, applying column projection
// when columns is non-empty (4.G: "Emit the records array as JSON,
// applying column projection if column filters are present").
func JSON(w io.Writer, records []*flatten.Record, columns []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if len(columns) == 0 {
		docs := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			doc := make(map[string]any, len(rec.Keys()))
			for _, k := range rec.Keys() {
				v, _ := rec.Get(k)
				doc[k] = v
			}
			docs = append(docs, doc)
		}
		return enc.Encode(docs)
	}

	docs := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		doc := make(map[string]any, len(columns))
		for _, col := range columns {
			v, _ := rec.Get(col)
			doc[col] = v
		}
		docs = append(docs, doc)
	}
	return enc.Encode(docs)
}

// Keys writes the sorted union of every dotted path, one per line
// (4.G: keys mode).
func Keys(w io.Writer, records []*flatten.Record) {
	keys := filter.KeysUnion(records)
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
}
