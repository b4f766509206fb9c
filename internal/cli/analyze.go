package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/render"
	"github.com/planweave/planweave/internal/usecase"
)

// newAnalyzeCommand creates the analyze command.
func newAnalyzeCommand(c *app.Container) *cobra.Command {
	var project string
	var gantt bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute the critical path and slack for the plan",
		Long: `Compute schedule metrics for the selected task population.

The dependency graph is validated first; a cyclic plan is rejected
with every cycle listed. The analysis then reports earliest and
latest start/finish, total and free slack, and the critical path.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.AnalyzeScheduleUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.AnalyzeScheduleInput{
				Filter: domain.TaskFilter{ProjectID: project},
			})
			if err != nil {
				var cerr *domain.CycleError
				if errors.As(err, &cerr) {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "The plan contains dependency cycles:")
					for _, cycle := range cerr.Cycles {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", joinCycle(cycle))
					}
				}
				return err
			}

			if gantt {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), render.Gantt(out.Result))
			} else {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), render.ScheduleTable(out.Result))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Restrict analysis to one project")
	cmd.Flags().BoolVar(&gantt, "gantt", false, "Render a timeline instead of the metrics table")
	return cmd
}

// joinCycle formats a cycle as a closed loop.
func joinCycle(cycle []string) string {
	s := ""
	for _, id := range cycle {
		s += id + " -> "
	}
	if len(cycle) > 0 {
		s += cycle[0]
	}
	return s
}
