package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/render"
	"github.com/planweave/planweave/internal/tui"
	"github.com/planweave/planweave/internal/usecase"
)

// bulkFlags collects the mutation selectors of the bulk command.
type bulkFlags struct {
	setPriority string
	setStatus   string
	setResource string
	migrateTo   string
	addTags     []string
	removeTags  []string
	setDuration int64
	setDue      int64
}

// newBulkCommand creates the bulk command.
func newBulkCommand(c *app.Container) *cobra.Command {
	var flags bulkFlags
	var cascade bool
	var rollback bool
	var watch bool
	var batchSize int
	var workers int
	var retries int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "bulk <task-id>...",
		Short: "Apply one mutation to many tasks",
		Long: `Apply one logical mutation to a set of tasks.

Exactly one mutation kind may be selected per invocation: field
updates (--set-priority, --set-duration, --set-due, --set-resource),
a status transition (--set-status), tag changes (--add-tag,
--remove-tag), or a project migration (--migrate-to).

With --cascade, transitive dependents of the named tasks are included.
With --rollback, a failed operation reverts every committed mutation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := buildOperation(cmd, flags)
			if err != nil {
				return err
			}

			cfg, err := c.ConfigLoader.Load()
			if err != nil {
				return err
			}
			engineCfg := cfg.Engine
			engineCfg.Cascade = cascade
			engineCfg.RollbackOnError = rollback
			if cmd.Flags().Changed("batch-size") {
				engineCfg.BatchSize = batchSize
			}
			if cmd.Flags().Changed("workers") {
				engineCfg.MaxWorkers = workers
			}
			if cmd.Flags().Changed("retries") {
				engineCfg.RetryMaxAttempts = retries
			}
			if cmd.Flags().Changed("timeout") {
				engineCfg.Timeout = timeout
			}

			uc := c.BulkUpdateUseCase()
			handle, err := uc.Start(cmd.Context(), usecase.BulkUpdateInput{
				TaskIDs: args,
				Op:      op,
				Config:  engineCfg,
			})
			if err != nil {
				return err
			}

			if watch {
				if err := tui.Watch(handle); err != nil {
					return err
				}
			}
			result := handle.Wait()
			_, _ = fmt.Fprint(cmd.OutOrStdout(), render.BulkResult(result))

			if result.RollbackAttempted && !result.RollbackSucceeded {
				return &domain.RollbackError{Failures: result.RollbackFailures}
			}
			if result.Status != domain.OpCompleted {
				return fmt.Errorf("bulk operation %s", result.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.setPriority, "set-priority", "", "Set priority (low, medium, high, urgent)")
	cmd.Flags().Int64Var(&flags.setDuration, "set-duration", -1, "Set duration in minutes")
	cmd.Flags().Int64Var(&flags.setDue, "set-due", 0, "Set due time in minutes")
	cmd.Flags().StringVar(&flags.setResource, "set-resource", "", "Set assigned resource ID")
	cmd.Flags().StringVar(&flags.setStatus, "set-status", "", "Transition to a new status")
	cmd.Flags().StringSliceVar(&flags.addTags, "add-tag", nil, "Add a tag (repeatable)")
	cmd.Flags().StringSliceVar(&flags.removeTags, "remove-tag", nil, "Remove a tag (repeatable)")
	cmd.Flags().StringVar(&flags.migrateTo, "migrate-to", "", "Move tasks to another project")

	cmd.Flags().BoolVar(&cascade, "cascade", false, "Include transitive dependents")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Revert committed mutations on failure")
	cmd.Flags().BoolVar(&watch, "watch", false, "Show live progress while the operation runs")
	cmd.Flags().IntVar(&batchSize, "batch-size", 50, "Tasks per batch")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent batch workers")
	cmd.Flags().IntVar(&retries, "retries", 3, "Retry attempts for transient failures")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Wall-clock budget for the whole operation (0 = none)")
	return cmd
}

// buildOperation converts the flag set into exactly one operation kind.
func buildOperation(cmd *cobra.Command, flags bulkFlags) (domain.BulkOperation, error) {
	var op domain.BulkOperation
	kinds := 0

	field := &domain.FieldUpdate{}
	if flags.setPriority != "" {
		p := domain.Priority(flags.setPriority)
		field.Priority = &p
	}
	if cmd.Flags().Changed("set-duration") {
		field.DurationMins = &flags.setDuration
	}
	if cmd.Flags().Changed("set-due") {
		field.DueMins = &flags.setDue
	}
	if flags.setResource != "" {
		field.ResourceID = &flags.setResource
	}
	if field.Priority != nil || field.DurationMins != nil || field.DueMins != nil || field.ResourceID != nil {
		op = domain.BulkOperation{Kind: domain.OpKindFieldUpdate, Field: field}
		kinds++
	}

	if flags.setStatus != "" {
		op = domain.BulkOperation{Kind: domain.OpKindStatusTransition, Status: &domain.StatusTransition{To: domain.Status(flags.setStatus)}}
		kinds++
	}
	if len(flags.addTags) > 0 || len(flags.removeTags) > 0 {
		op = domain.BulkOperation{Kind: domain.OpKindTagMutation, Tags: &domain.TagMutation{Add: flags.addTags, Remove: flags.removeTags}}
		kinds++
	}
	if flags.migrateTo != "" {
		op = domain.BulkOperation{Kind: domain.OpKindProjectMigration, Migrate: &domain.ProjectMigration{ToProjectID: flags.migrateTo}}
		kinds++
	}

	if kinds == 0 {
		return op, fmt.Errorf("%w: no mutation selected", domain.ErrInvalidOperation)
	}
	if kinds > 1 {
		return op, fmt.Errorf("%w: only one mutation kind per invocation", domain.ErrInvalidOperation)
	}
	return op, op.Validate()
}
