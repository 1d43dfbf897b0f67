package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/foldersize/internal/scan"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputTSV   = "tsv"
)

// Print writes items in the requested format.
func Print(format, title string, items []scan.Item, writer io.Writer) error {
	switch format {
	case OutputJSON:
		return PrintJSON(items, writer)
	case OutputTSV:
		return PrintTSV(items, writer)
	case OutputTable:
		return PrintTable(title, items, writer)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// PrintJSON outputs items in JSON format.
func PrintJSON(items []scan.Item, writer io.Writer) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTSV outputs one "size<TAB>path" line per item, for piping into other tools.
func PrintTSV(items []scan.Item, writer io.Writer) error {
	for _, it := range items {
		if _, err := fmt.Fprintf(writer, "%d\t%s\n", it.Size, it.Path); err != nil {
			return err
		}
	}

	return nil
}

// PrintTable outputs items in human-readable table format.
// The largest item is printed last, closest to the prompt.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(title string, items []scan.Item, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	var total int64
	for _, it := range items {
		total += it.Size
	}

	fmt.Fprintf(w, "\n%s:\t\t\n", title)

	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]

		pct := 0.0
		if total > 0 {
			pct = 100.0 * float64(it.Size) / float64(total)
		}

		name := it.Name
		if it.IsDir {
			name += "/"
		}

		marker := ""
		if it.IsDir && it.FromCache {
			marker = " [cached]"
		}

		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)%s\n",
			i+1, name, humanize.IBytes(uint64(it.Size)), pct, marker) //nolint:gosec // Sizes are never negative
	}

	fmt.Fprintf(w, "\nTotal:\t%s (%d bytes)\n", humanize.IBytes(uint64(total)), total) //nolint:gosec // Sizes are never negative

	return w.Flush()
}
