package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/render"
	"github.com/planweave/planweave/internal/usecase"
)

// newLevelCommand creates the level command.
func newLevelCommand(c *app.Container) *cobra.Command {
	var project string
	var windowMins int64
	var maxIterations int

	cmd := &cobra.Command{
		Use:   "level",
		Short: "Resolve resource over-allocation by delaying tasks",
		Long: `Level the analyzed schedule against resource capacity.

Within each capacity window, competing tasks keep their slots by
ascending slack then descending priority; the losing task shifts to
the next window. Over-allocations that delaying cannot fix are
reported as unresolved.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.ConfigLoader.Load()
			if err != nil {
				return err
			}
			levelCfg := cfg.Leveling
			if cmd.Flags().Changed("window") {
				levelCfg.WindowMins = windowMins
			}
			if cmd.Flags().Changed("max-iterations") {
				levelCfg.MaxIterations = maxIterations
			}

			uc := c.LevelScheduleUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.LevelScheduleInput{
				Filter: domain.TaskFilter{ProjectID: project},
				Config: levelCfg,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), render.LevelingReport(out.Schedule, out.Leveling))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Restrict leveling to one project")
	cmd.Flags().Int64Var(&windowMins, "window", 1440, "Capacity window width in minutes")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 1000, "Shift budget before reporting unresolved")
	return cmd
}
