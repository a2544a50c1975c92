package cliapp

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelrun/kestrel/internal/cliclient"
	"github.com/kestrelrun/kestrel/internal/planfile"
)

func newCreateCommand(client func() *cliclient.Client) *cobra.Command {
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a resource on the server",
	}
	create.AddCommand(newCreatePlanCommand(client))
	return create
}

func newCreatePlanCommand(client func() *cliclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <file>",
		Short: "Create a plan from a YAML plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := planfile.Load(args[0])
			if err != nil {
				return err
			}
			plan, err := client().CreatePlan(cmd.Context(), spec)
			if err != nil {
				return err
			}
			return printJSON(cmd, plan)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}
