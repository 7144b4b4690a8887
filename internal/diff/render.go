package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const (
	colFile   = "File"
	colStatus = "Status"

	cleanMsg = "No differences found"
)

var (
	addedLine   = color.New(color.FgGreen)
	removedLine = color.New(color.FgRed)
	hunkLine    = color.New(color.FgCyan)
)

// Render writes the report to w: a summary table, then the unified diff of
// each differing file, then any dangling skill links.
func Render(w io.Writer, report *Report) error {
	if report.Clean() {
		fmt.Fprintln(w, cleanMsg)
	} else {
		if err := renderTable(w, report.Entries); err != nil {
			return err
		}
		for _, e := range report.Entries {
			if e.Diff == "" {
				continue
			}
			fmt.Fprintln(w)
			fmt.Fprint(w, ColorizeDiff(e.Diff))
		}
	}

	if len(report.Dangling) > 0 {
		fmt.Fprintf(w, "\nDangling skill links (%d):\n", len(report.Dangling))
		for _, link := range report.Dangling {
			fmt.Fprintf(w, "  %s -> %s\n", link.Name, link.Target)
		}
	}
	return nil
}

func renderTable(w io.Writer, entries []Entry) error {
	cnf := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(cnf))
	table.Header(colFile, colStatus)
	for _, e := range entries {
		table.Append(e.Name, e.State.String())
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// ColorizeDiff colors added lines green, removed lines red and hunk headers
// cyan. File headers are left plain.
func ColorizeDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(line)
		case strings.HasPrefix(line, "@@"):
			b.WriteString(hunkLine.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedLine.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedLine.Sprint(line))
		default:
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
