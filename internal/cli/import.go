package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/usecase"
)

// newImportCommand creates the import command.
func newImportCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "import <plan.yaml>",
		Short: "Import tasks, resources, and assignments from a YAML plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.ImportTasksUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ImportTasksInput{Path: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks, %d resources, %d assignments\n",
				out.Imported, out.Resources, out.Assignments)
			return nil
		},
	}
}
