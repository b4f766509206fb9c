// Package cli provides the command-line interface for planweave.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/planweave/planweave/internal/app"
)

// Command group IDs.
const (
	groupSetup    = "setup"
	groupPlan     = "plan"
	groupAnalysis = "analysis"
)

// NewRootCommand creates the root command for planweave.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "planweave",
		Short: "Task scheduling and dependency analysis CLI",
		Long: `planweave analyzes task plans: it builds the dependency graph,
detects cycles, computes the critical path and slack for every task,
levels resource over-allocation, and applies bulk updates to many
tasks at once with retry and rollback.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupPlan, Title: "Plan Management:"},
		&cobra.Group{ID: groupAnalysis, Title: "Analysis:"},
	)

	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	importCmd := newImportCommand(c)
	importCmd.GroupID = groupPlan

	listCmd := newListCommand(c)
	listCmd.GroupID = groupPlan

	bulkCmd := newBulkCommand(c)
	bulkCmd.GroupID = groupPlan

	analyzeCmd := newAnalyzeCommand(c)
	analyzeCmd.GroupID = groupAnalysis

	levelCmd := newLevelCommand(c)
	levelCmd.GroupID = groupAnalysis

	root.AddCommand(
		initCmd,
		importCmd,
		listCmd,
		bulkCmd,
		analyzeCmd,
		levelCmd,
	)

	return root
}
