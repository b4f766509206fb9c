package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a planweave workspace",
		Long: `Initialize a planweave workspace.

This command creates the .planweave/ directory with:
- plan.json: empty task store
- logs/: directory for log files`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitUseCase()
			if _, err := uc.Execute(cmd.Context(), usecase.InitInput{}); err != nil {
				if errors.Is(err, domain.ErrAlreadyInitialized) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "planweave already initialized in %s\n", c.Paths.WorkspaceDir)
					return nil
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized planweave in %s\n", c.Paths.WorkspaceDir)
			return nil
		},
	}
}
