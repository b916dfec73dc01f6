// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jobwatch/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCapture outputs a human-readable summary of a finalized record and
// its delivery acknowledgment.
func (p *Printer) PrintCapture(record *types.JobPostingRecord, ack types.RelayAck) {
	if record == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Platform: %s (#%s)\n", record.Platform, record.PlatformJobID))
	if record.Title != nil {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", *record.Title))
	}
	if record.Company != nil {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", *record.Company))
	}
	if record.Location != nil {
		sb.WriteString(fmt.Sprintf("Location: %s\n", *record.Location))
	}
	if record.Salary != nil {
		sb.WriteString(fmt.Sprintf("Salary:   %s\n", *record.Salary))
	}
	sb.WriteString(fmt.Sprintf("Quality:  %s\n", record.DataQuality))

	if len(record.Skills) > 0 {
		count := min(len(record.Skills), maxItemsToShow)
		sb.WriteString("Skills:   " + strings.Join(record.Skills[:count], ", "))
		if len(record.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf(" (+%d more)", len(record.Skills)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	switch {
	case ack.Success && ack.Method == types.MethodPrimary:
		sb.WriteString("Delivered to companion application")
	case ack.Success && ack.Method == types.MethodLocal:
		sb.WriteString("Companion unreachable, queued locally")
	default:
		sb.WriteString(fmt.Sprintf("Not delivered: %s", ack.Reason))
	}

	p.printBox("CAPTURED JOB POSTING", sb.String())
}

// PrintQueue outputs a summary of the fallback queue contents.
func (p *Printer) PrintQueue(entries []types.QueueEntry) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Queued captures: %d\n", len(entries)))

	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		entry := entries[i]
		title := entry.Job.PlatformJobID
		if entry.Job.Title != nil {
			title = *entry.Job.Title
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("    %s · %s\n", entry.Job.Platform, entry.CapturedAt.Format("2006-01-02 15:04")))
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("FALLBACK QUEUE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStatus outputs the status query result.
func (p *Printer) PrintStatus(status types.Status) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Capture enabled: %v\n", status.Enabled))
	sb.WriteString(fmt.Sprintf("Companion connected: %v", status.Connected))
	p.printBox("JOBWATCH STATUS", sb.String())
}
