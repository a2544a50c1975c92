package cliapp

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kestrelrun/kestrel/internal/cliclient"
	"github.com/kestrelrun/kestrel/internal/process"
	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

func newTailCommand(client func() *cliclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "tail <id>",
		Short: "Stream a task's stdout/stderr to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			return tail(cmd, client(), id)
		},
	}
}

func tail(cmd *cobra.Command, c *cliclient.Client, id taskmodel.ID) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	return c.Tail(cmd.Context(), id, func(line process.Line) {
		if line.Stream == process.Stderr {
			fmt.Fprintln(errOut, line.Text)
			return
		}
		fmt.Fprintln(out, line.Text)
	})
}
