package cliapp

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kestrelrun/kestrel/internal/cliclient"
)

func newPlanCommand(client func() *cliclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <id>",
		Short: "Materialize a plan into a task tree and print its root task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			task, err := client().MaterializePlan(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, task)
		},
	}
}
