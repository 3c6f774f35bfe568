package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/rshade/recordlist/internal/cli/pagination"
	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/internal/record"
)

// tabPadding is the minimum column padding for tabwriter output.
const tabPadding = 2

// listOutput is the structured form of the list command's result.
type listOutput struct {
	Records    []record.Record            `json:"records"    yaml:"records"`
	Pagination *pagination.PaginationMeta `json:"pagination" yaml:"pagination"`
}

// validateOutputFormat rejects formats other than table, json and yaml.
func validateOutputFormat(format string) error {
	switch format {
	case config.FormatTable, config.FormatJSON, config.FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (valid: table, json, yaml)", format)
	}
}

// newPrinter formats counts for people.
func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// renderRecords writes records in the requested format. meta may be nil.
func renderRecords(w io.Writer, format string, recs []record.Record, meta *pagination.PaginationMeta) error {
	if recs == nil {
		recs = []record.Record{}
	}
	var err error
	switch format {
	case config.FormatJSON:
		err = writeJSON(w, listOutput{Records: recs, Pagination: meta})
	case config.FormatYAML:
		err = writeYAML(w, listOutput{Records: recs, Pagination: meta})
	default:
		err = renderRecordsTable(w, recs, meta)
	}
	if isBrokenPipe(err) {
		return nil
	}
	return err
}

func renderRecordsTable(w io.Writer, recs []record.Record, meta *pagination.PaginationMeta) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	header := make([]string, 0, len(record.Columns)+1)
	rule := make([]string, 0, len(record.Columns)+1)
	header = append(header, "ID")
	rule = append(rule, "--")
	for _, col := range record.Columns {
		title := strings.ToUpper(col.Title)
		header = append(header, title)
		rule = append(rule, strings.Repeat("-", len(title)))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	fmt.Fprintln(tw, strings.Join(rule, "\t"))

	for _, rec := range recs {
		row := make([]string, 0, len(record.Columns)+1)
		row = append(row, rec.ID)
		for _, col := range record.Columns {
			row = append(row, rec.Field(col.Key))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}

	if meta != nil {
		p := newPrinter()
		total := p.Sprintf("%d", meta.TotalItems)
		if meta.Approximate {
			total = "~" + total
		}
		line := p.Sprintf("\nPage %d of %d (%s records", meta.CurrentPage, meta.TotalPages, total)
		if meta.SortField != "" {
			line += ", sorted by " + meta.SortField + " " + meta.SortOrder
		}
		line += ")"
		if meta.HasNext {
			line += p.Sprintf(". Next: --page %d", meta.CurrentPage+1)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// renderRecord writes one record. Table output is a key/value list.
func renderRecord(w io.Writer, format string, rec record.Record) error {
	switch format {
	case config.FormatJSON:
		return writeJSON(w, rec)
	case config.FormatYAML:
		return writeYAML(w, rec)
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", rec.ID)
	for _, col := range record.Columns {
		fmt.Fprintf(tw, "%s:\t%s\n", col.Title, rec.Field(col.Key))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2) //nolint:mnd // Two-space YAML indentation.
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return encoder.Close()
}

// isBrokenPipe reports whether err is EPIPE, as when piping into head.
func isBrokenPipe(err error) bool {
	return err != nil && errors.Is(err, syscall.EPIPE)
}
