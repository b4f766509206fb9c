package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/render"
	"github.com/planweave/planweave/internal/usecase"
)

// newListCommand creates the list command.
func newListCommand(c *app.Container) *cobra.Command {
	var project string
	var statuses []string
	var tags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := domain.TaskFilter{ProjectID: project, Tags: tags}
			for _, s := range statuses {
				status := domain.Status(s)
				if !status.IsValid() {
					return fmt.Errorf("%w: %s", domain.ErrInvalidStatus, s)
				}
				filter.Statuses = append(filter.Statuses, status)
			}

			uc := c.ListTasksUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListTasksInput{Filter: filter})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), render.TaskList(out.Tasks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Filter by project ID")
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (repeatable)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Filter by tag (all must match)")
	return cmd
}
