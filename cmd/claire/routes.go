package main

import (
	"fmt"

	"github.com/hackeddesign/claire/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the routing table as a Mermaid flowchart",
	Long: `Renders intents, dialogues and their next links in Mermaid syntax.
With --conversation, the dialogs on that conversation's stack are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, _, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer closeServices(svc)

		var overlay *graph.Overlay
		if id, _ := cmd.Flags().GetString("conversation"); id != "" {
			state, err := svc.Engine.Inspect(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error loading conversation '%s': %w", id, err)
			}
			overlay = graph.OverlayFor(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(svc.Engine.Routes(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.Flags().String("conversation", "", "Highlight the stack of this conversation")
}
