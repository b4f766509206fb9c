// Package render formats analysis results for terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/planweave/planweave/internal/domain"
)

// Colors defines the output color palette.
var Colors = struct {
	Critical lipgloss.Color
	Header   lipgloss.Color
	Muted    lipgloss.Color
	Warning  lipgloss.Color
	Bar      lipgloss.Color
}{
	Critical: lipgloss.Color("#D63031"), // Red
	Header:   lipgloss.Color("#6C5CE7"), // Purple
	Muted:    lipgloss.Color("#636E72"), // Gray
	Warning:  lipgloss.Color("#FDCB6E"), // Yellow
	Bar:      lipgloss.Color("#74B9FF"), // Light blue
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(Colors.Header)
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(Colors.Critical)
	mutedStyle    = lipgloss.NewStyle().Foreground(Colors.Muted)
	warningStyle  = lipgloss.NewStyle().Foreground(Colors.Warning)
	barStyle      = lipgloss.NewStyle().Foreground(Colors.Bar)
)

// ScheduleTable renders one row per task in topological order with the
// forward/backward pass results. Critical tasks are highlighted.
func ScheduleTable(result *domain.ScheduleResult) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-16s %8s %8s %8s %8s %8s %8s  %s",
		"TASK", "ES", "EF", "LS", "LF", "SLACK", "FREE", "CRIT")))
	b.WriteString("\n")

	for _, id := range result.Order {
		ts := result.Tasks[id]
		mark := ""
		if ts.OnCriticalPath {
			mark = "*"
		}
		row := fmt.Sprintf("%-16s %8d %8d %8d %8d %8d %8d  %s",
			id, ts.EarlyStartMins, ts.EarlyFinishMins, ts.LateStartMins, ts.LateFinishMins,
			ts.TotalSlackMins, ts.FreeSlackMins, mark)
		if ts.OnCriticalPath {
			b.WriteString(criticalStyle.Render(row))
		} else {
			b.WriteString(row)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Critical path: %s\n", strings.Join(result.CriticalPath, " -> ")))
	b.WriteString(fmt.Sprintf("Total duration: %d mins\n", result.TotalDurationMins))
	for _, w := range result.Warnings {
		b.WriteString(warningStyle.Render("Warning: " + w.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// ganttWidth is the character width of the bar area.
const ganttWidth = 60

// Gantt renders a proportional text timeline of the schedule, one row
// per task in topological order. Critical bars are highlighted.
func Gantt(result *domain.ScheduleResult) string {
	if len(result.Order) == 0 || result.TotalDurationMins <= 0 {
		return mutedStyle.Render("(empty schedule)") + "\n"
	}

	scale := float64(ganttWidth) / float64(result.TotalDurationMins)
	var b strings.Builder
	for _, id := range result.Order {
		ts := result.Tasks[id]
		startCol := int(float64(ts.EarlyStartMins) * scale)
		endCol := int(float64(ts.EarlyFinishMins) * scale)
		if startCol < 0 {
			startCol = 0
		}
		width := endCol - startCol
		if width < 1 {
			width = 1 // Milestones still get a visible tick
		}

		bar := strings.Repeat(" ", startCol)
		fill := strings.Repeat("█", width)
		if ts.OnCriticalPath {
			fill = criticalStyle.Render(fill)
		} else {
			fill = barStyle.Render(fill)
		}
		b.WriteString(fmt.Sprintf("%-16s |%s%s\n", id, bar, fill))
	}
	return b.String()
}

// LevelingReport renders the shifted schedule and any unresolved
// over-allocations.
func LevelingReport(schedule *domain.ScheduleResult, leveling *domain.LevelingResult) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-16s %10s %10s %10s", "TASK", "ES", "START", "FINISH")))
	b.WriteString("\n")

	for _, id := range schedule.Order {
		ts := schedule.Tasks[id]
		start := leveling.StartMins[id]
		row := fmt.Sprintf("%-16s %10d %10d %10d", id, ts.EarlyStartMins, start, leveling.FinishMins[id])
		if start != ts.EarlyStartMins {
			b.WriteString(warningStyle.Render(row + "  (delayed)"))
		} else {
			b.WriteString(row)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Iterations: %d, extension: %d mins\n", leveling.Iterations, leveling.ExtensionMins))
	if leveling.Resolved() {
		b.WriteString("All over-allocations resolved.\n")
	} else {
		for _, o := range leveling.Unresolved {
			b.WriteString(criticalStyle.Render(fmt.Sprintf("Unresolved: resource %s over capacity in window starting at %d mins",
				o.ResourceID, o.WindowStartMins)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// TaskList renders one line per task.
func TaskList(tasks []*domain.TaskRecord) string {
	if len(tasks) == 0 {
		return mutedStyle.Render("(no tasks)") + "\n"
	}
	var b strings.Builder
	for _, t := range tasks {
		line := fmt.Sprintf("%-16s [%s] %-8s %6dm  %s", t.ID, t.Status.Display(), t.Priority.Display(), t.DurationMins, t.Title)
		if len(t.Tags) > 0 {
			line += mutedStyle.Render("  #" + strings.Join(t.Tags, " #"))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// BulkResult renders the terminal accounting of a bulk operation.
func BulkResult(r *domain.BulkOperationResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Status: %s\n", r.Status))
	b.WriteString(fmt.Sprintf("Committed %d/%d, failed %d, retries %d\n", r.Processed, r.Total, r.Failed, r.Retried))
	for _, f := range r.Failures {
		b.WriteString(criticalStyle.Render(fmt.Sprintf("  %s: %v", f.TaskID, f.Err)))
		b.WriteString("\n")
	}
	if r.RollbackAttempted {
		if r.RollbackSucceeded {
			b.WriteString("Rollback succeeded; all committed mutations were reverted.\n")
		} else {
			b.WriteString(criticalStyle.Render("Rollback incomplete; data may be in a mixed state:"))
			b.WriteString("\n")
			for _, f := range r.RollbackFailures {
				b.WriteString(criticalStyle.Render(fmt.Sprintf("  %s: %v", f.TaskID, f.Err)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
