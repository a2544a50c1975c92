package cliapp

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kestrelrun/kestrel/internal/cliclient"
)

func newStartCommand(client func() *cliclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			state, err := client().StartTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, state)
		},
	}
}
