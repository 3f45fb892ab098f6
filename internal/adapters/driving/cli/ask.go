package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askRebuild bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]...",
	Short: "Ask one or more questions",
	Long: `Answer each question in turn within a single conversation and show
whether the knowledge base was used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askRebuild, "rebuild", false, "rebuild the index before answering")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the conversation history as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}

	newConversation, err := b.Conversations(cmd.Context(), askRebuild)
	if err != nil {
		return err
	}
	conv := newConversation()

	for i, question := range args {
		answer := conv.ProcessInput(cmd.Context(), question)
		if askJSON {
			continue
		}

		if i > 0 {
			cmd.Println()
		}
		cmd.Printf("Q: %s\n", question)
		cmd.Printf("A: %s\n", answer)

		history := conv.History()
		if len(history) > 0 && history[len(history)-1].UsedContext {
			cmd.Println("   (Used knowledge base context)")
		} else {
			cmd.Println("   (Used general knowledge)")
		}
	}

	if askJSON {
		data, err := json.MarshalIndent(conv.History(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
	}
	return nil
}
