package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type renderer interface {
	render(Status, string, Statistics) string
}

type barRenderer struct {
	width     int
	noColor   bool
	showStats bool
}

func (r *barRenderer) render(status Status, message string, stats Statistics) string {
	var out strings.Builder

	barWidth := r.width / 3
	if barWidth < 10 {
		barWidth = 10
	}

	var progress float64
	if status.Total > 0 {
		progress = float64(status.Done) / float64(status.Total)
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(float64(barWidth) * progress)
	if filled > barWidth {
		filled = barWidth
	}

	out.WriteString("[")
	if !r.noColor {
		out.WriteString("\033[32m")
	}
	out.WriteString(strings.Repeat("=", filled))
	if filled < barWidth {
		out.WriteString(">")
		out.WriteString(strings.Repeat(" ", barWidth-filled-1))
	}
	if !r.noColor {
		out.WriteString("\033[0m")
	}
	out.WriteString("]")

	out.WriteString(fmt.Sprintf(" %3.0f%% %d/%d", progress*100, status.Done, status.Total))

	if message != "" {
		out.WriteString(" " + message)
	} else if status.CurrentItem != "" {
		out.WriteString(" " + shorten(status.CurrentItem, r.width/3))
	}

	if r.showStats {
		out.WriteString(r.counters(status, stats))
	}

	return out.String()
}

func (r *barRenderer) counters(status Status, stats Statistics) string {
	errPart := fmt.Sprintf("err %d", status.Errors)
	if !r.noColor && status.Errors > 0 {
		errPart = fmt.Sprintf("\033[31m%s\033[0m", errPart)
	}

	return fmt.Sprintf(" | ok %d skip %d %s | %.1f/s | %s",
		status.Processed, status.Skipped, errPart,
		stats.Rate, humanize.Bytes(uint64(status.OutputBytes)))
}

type simpleRenderer struct {
	noColor   bool
	showStats bool
}

func (r *simpleRenderer) render(status Status, message string, stats Statistics) string {
	var out strings.Builder

	out.WriteString(fmt.Sprintf("%d/%d (%3.0f%%)", status.Done, status.Total, stats.Percent))

	label := message
	if label == "" {
		label = status.CurrentItem
	}
	if label != "" {
		out.WriteString(" " + label)
	}

	if r.showStats {
		out.WriteString(fmt.Sprintf(" | ok %d skip %d err %d | %s elapsed",
			status.Processed, status.Skipped, status.Errors,
			formatDuration(stats.Elapsed)))
	}

	return out.String()
}

// Helper functions

// shorten trims long paths from the left so the filename stays visible.
func shorten(path string, max int) string {
	if max < 8 {
		max = 8
	}
	if len(path) <= max {
		return path
	}
	return "..." + path[len(path)-max+3:]
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds",
			int(d.Minutes()),
			int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm%ds",
		int(d.Hours()),
		int(d.Minutes())%60,
		int(d.Seconds())%60)
}
