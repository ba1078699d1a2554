package main

import (
	"os"

	"github.com/hackeddesign/claire/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the engine from the terminal",
	Long: `Starts an interactive conversation. Progress is saved after every turn;
run again with the same --conversation to resume where it stopped.
Type /reset to cancel the active dialogs, exit or quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, logger, err := setup(cmd, nil)
		if err != nil {
			return err
		}
		defer closeServices(svc)

		opts := cli.ChatOptions{In: os.Stdin, Out: os.Stdout}
		opts.ConversationID, _ = cmd.Flags().GetString("conversation")
		opts.Intent, _ = cmd.Flags().GetString("intent")
		opts.Options, _ = cmd.Flags().GetString("options")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")

		return cli.Chat(cmd.Context(), svc.Engine, logger, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("conversation", "", "Conversation id to start or resume (generated when empty)")
	chatCmd.Flags().String("intent", "", "Intent to start from the routing table")
	chatCmd.Flags().String("options", "", "JSON object of options for the intent's dialogue")
	chatCmd.Flags().Bool("json", false, "Read and write JSON lines instead of text")
	chatCmd.Flags().Bool("fresh", false, "Delete any stored progress before starting")
	chatCmd.Flags().BoolP("quiet", "q", false, "Skip the banner and system messages")
}
