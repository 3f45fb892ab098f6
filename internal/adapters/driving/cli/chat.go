package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

var (
	chatPlain   bool
	chatRebuild bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start a conversation with the assistant. On a terminal this opens the
interactive chat interface; otherwise, or with --plain, questions are read
line by line from standard input. Type "exit" or "quit" to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use a line-based prompt instead of the chat interface")
	chatCmd.Flags().BoolVar(&chatRebuild, "rebuild", false, "rebuild the index before starting")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}

	newConversation, err := b.Conversations(cmd.Context(), chatRebuild)
	if err != nil {
		return err
	}
	conv := newConversation()

	if !chatPlain && isTerminal(cmd.InOrStdin()) {
		corpus, err := b.Corpus(cmd.Context(), false)
		if err != nil {
			return err
		}
		settings, err := b.AppSettings()
		if err != nil {
			return err
		}
		app, err := tui.NewApp(&tui.Ports{
			Conversation: conv,
			Retrieval:    corpus,
			TopK:         settings.Conversation.TopK,
		})
		if err != nil {
			return fmt.Errorf("failed to create TUI: %w", err)
		}
		return app.Run()
	}

	return chatLoop(cmd, conv)
}

// chatLoop answers one question per input line until EOF or an exit word.
func chatLoop(cmd *cobra.Command, conv driving.ConversationService) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, domain.WelcomeMessage)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		answer := conv.ProcessInput(cmd.Context(), line)
		fmt.Fprintln(out, answer)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
