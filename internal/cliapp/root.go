// Package cliapp assembles the orchestrator's cobra command tree: create
// plan, plan, serve, start, run, tail. Every remote subcommand shares a
// persistent --server flag, read when the subcommand builds its client.
package cliapp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelrun/kestrel/internal/cliclient"
)

const defaultServerURL = "http://127.0.0.1:3000"

// Exit codes for the process boundary in cmd/kestrel.
const (
	ExitOK            = 0
	ExitInternalError = 1
)

// NewRootCommand builds the top-level "kestrel" command with every
// subcommand attached.
func NewRootCommand() *cobra.Command {
	var serverURL string

	root := &cobra.Command{
		Use:           "kestrel",
		Short:         "Declarative command orchestration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL, "orchestrator server URL")

	client := func() *cliclient.Client { return cliclient.New(serverURL) }

	root.AddCommand(
		newCreateCommand(client),
		newPlanCommand(client),
		newServeCommand(),
		newStartCommand(client),
		newRunCommand(client),
		newTailCommand(client),
	)
	return root
}

// Execute runs the command tree against os.Args and reports the exit code
// the process should use.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitInternalError
	}
	return ExitOK
}
