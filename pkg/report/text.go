package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/saraf/clean-whiteboard-images/pkg/batch"
)

// renderText builds the human readable summary
func (r *renderer) renderText(summary *batch.Summary) string {
	var b strings.Builder

	stats := summary.Stats

	title := fmt.Sprintf("Cleanup summary (run %s)", shortID(summary.RunID))
	if summary.DryRun {
		title += " [dry run]"
	}
	if r.config.WithColor {
		title = color.New(color.Bold).Sprint(title)
	}
	b.WriteString(title + "\n")

	b.WriteString(fmt.Sprintf("  Root:       %s\n", summary.Root))
	if r.config.Engine != "" {
		b.WriteString(fmt.Sprintf("  Engine:     %s\n", r.config.Engine))
	}
	b.WriteString(fmt.Sprintf("  Discovered: %d\n", stats.Discovered))

	processed := fmt.Sprintf("%d", stats.Processed)
	if r.config.WithColor && stats.Processed > 0 {
		processed = color.New(color.FgGreen).Sprint(processed)
	}
	b.WriteString(fmt.Sprintf("  Processed:  %s\n", processed))

	b.WriteString(fmt.Sprintf("  Skipped:    %d\n", stats.Skipped))

	errLine := fmt.Sprintf("%d", stats.Errors)
	if detail := errorDetail(stats); detail != "" {
		errLine += " (" + detail + ")"
	}
	if r.config.WithColor && stats.Errors > 0 {
		errLine = color.New(color.FgRed).Sprint(errLine)
	}
	b.WriteString(fmt.Sprintf("  Errors:     %s\n", errLine))

	if stats.InputBytes > 0 || stats.OutputBytes > 0 {
		b.WriteString(fmt.Sprintf("  Data:       %s in, %s out\n",
			humanize.Bytes(uint64(stats.InputBytes)),
			humanize.Bytes(uint64(stats.OutputBytes))))
	}

	b.WriteString(fmt.Sprintf("  Duration:   %s\n", stats.Duration.Round(time.Millisecond)))

	if len(summary.Failures) > 0 {
		b.WriteString("\nFailures:\n")
		b.WriteString(failureTable(summary.Failures))
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range summary.Warnings {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", w.Path, w.Reason))
		}
	}

	if summary.Interrupted {
		note := "Run was interrupted; remaining files were not processed."
		if r.config.WithColor {
			note = color.New(color.FgYellow).Sprint(note)
		}
		b.WriteString("\n" + note + "\n")
	}

	return b.String()
}

func errorDetail(stats batch.Stats) string {
	var parts []string
	if stats.Timeouts > 0 {
		parts = append(parts, fmt.Sprintf("%d timed out", stats.Timeouts))
	}
	if stats.Interrupted > 0 {
		parts = append(parts, fmt.Sprintf("%d interrupted", stats.Interrupted))
	}
	return strings.Join(parts, ", ")
}

// failureTable lays the failures out in a bordered table, one row per
// file, already sorted by path.
func failureTable(failures []batch.Failure) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendHeader(table.Row{"File", "Reason"})
	for _, f := range failures {
		tw.AppendRow(table.Row{f.Path, f.Reason})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: 72},
	})

	return tw.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
