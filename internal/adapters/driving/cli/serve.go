package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-voice/internal/logger"
)

var (
	serveAddr    string
	serveRebuild bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve retrieval and conversation over HTTP. Each client conversation is
a separate session identified by the session_id returned from /v1/ask.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&serveRebuild, "rebuild", false, "rebuild the index before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}
	settings, err := b.AppSettings()
	if err != nil {
		return err
	}

	newConversation, err := b.Conversations(cmd.Context(), serveRebuild)
	if err != nil {
		return err
	}
	corpus, err := b.Corpus(cmd.Context(), false)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := corpus.Stats()
	logger.Info("Serving %d chunks from %d documents", stats.Chunks, stats.Documents)
	cmd.Printf("Listening on %s\n", addr)

	handler := httpapi.NewHandler(corpus, newConversation, settings.Conversation.TopK)
	return httpapi.Serve(ctx, addr, handler)
}
