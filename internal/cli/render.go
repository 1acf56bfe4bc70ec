package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/audiotasks/audiotasks/pkg/model"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var priorityColors = map[model.TaskPriority]string{
	model.PriorityLow:    ansiBlue,
	model.PriorityMedium: "",
	model.PriorityHigh:   ansiYellow,
	model.PriorityUrgent: ansiRed,
}

// formatDuration renders seconds as MM:SS, or HH:MM:SS past the hour.
func formatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", ansiBold+ansiGreen, ansiReset, msg)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s[ERROR]%s %s\n", ansiBold+ansiRed, ansiReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", ansiBold+ansiYellow, ansiReset, msg)
}

func dim(msg string) string {
	return ansiDim + msg + ansiReset
}

// printTaskList renders a task list with numbered entries and
// priority-colored labels.
func printTaskList(w io.Writer, list *model.TaskList) {
	fmt.Fprintf(w, "\n%s==== EXTRACTED TASKS (%d total) ====%s\n\n", ansiBold, list.TaskCount(), ansiReset)

	if len(list.Tasks) == 0 {
		fmt.Fprintln(w, "  "+dim("No tasks found."))
		return
	}

	for i, task := range list.Tasks {
		color := priorityColors[task.Priority]
		priority := color + strings.ToUpper(string(task.Priority)) + ansiReset

		line := "   Priority: " + priority
		if task.Assignee != "" {
			line += " | Assignee: " + task.Assignee
		}
		if len(task.Tags) > 0 {
			line += " | Tags: " + strings.Join(task.Tags, ", ")
		}
		if task.DueDate != nil {
			line += " | Due: " + task.DueDate.Format("2006-01-02")
		}

		fmt.Fprintf(w, "%s%d. %s%s\n", ansiBold, i+1, task.Title, ansiReset)
		fmt.Fprintln(w, line)
		if task.Description != "" {
			fmt.Fprintln(w, "   "+dim(task.Description))
		}
		fmt.Fprintln(w)
	}
}

// printSegments renders per-segment lines with start/end timestamps.
func printSegments(w io.Writer, segments []model.TranscriptionSegment) {
	for _, seg := range segments {
		fmt.Fprintf(w, "[%s -> %s] %s\n",
			formatDuration(seg.Start), formatDuration(seg.End), seg.Text)
	}
}
