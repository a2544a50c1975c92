package cliapp

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kestrelrun/kestrel/internal/cliclient"
)

func newRunCommand(client func() *cliclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Start a task and tail its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			c := client()
			if _, err := c.StartTask(cmd.Context(), id); err != nil {
				return err
			}
			return tail(cmd, c, id)
		},
	}
}
