package main

import (
	"os"

	"github.com/hackeddesign/claire/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"conversation"},
	Short:   "Manage stored conversations",
	Long:    `List, inspect, and remove conversations held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, _, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer closeServices(svc)
		return cli.ListConversations(cmd.Context(), svc.Store, os.Stdout)
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <conversation-id>",
	Short: "Print the stored state of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, _, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer closeServices(svc)
		return cli.InspectConversation(cmd.Context(), svc.Inspect, args[0], os.Stdout)
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <conversation-id>...",
	Short: "Remove one or more conversations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, _, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer closeServices(svc)
		return cli.RemoveConversations(cmd.Context(), svc.Store, args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
