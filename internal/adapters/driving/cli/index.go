package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/logger"
)

var (
	indexWatch    bool
	indexDebounce time.Duration
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the knowledge base index",
	Long: `Load every .txt document of the knowledge base, chunk and embed it, and
save the index so later commands start without re-embedding.

With --watch the index is rebuilt whenever a document is created, changed
or removed.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "rebuild when documents change")
	indexCmd.Flags().DurationVar(&indexDebounce, "debounce", 2*time.Second, "quiet period before a rebuild")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rebuild(ctx, cmd, b); err != nil {
		return err
	}
	if !indexWatch {
		return nil
	}

	changes, err := b.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch knowledge base: %w", err)
	}
	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	return watchLoop(ctx, cmd, b, changes, indexDebounce)
}

// watchLoop rebuilds once changes have been quiet for the debounce period.
// A failed rebuild is reported and the previous index stays in place.
func watchLoop(ctx context.Context, cmd *cobra.Command, b Backend, changes <-chan domain.DocumentChange, debounce time.Duration) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("%s %s", change.Type, change.Source)
			timer.Reset(debounce)
		case <-timer.C:
			if err := rebuild(ctx, cmd, b); err != nil {
				cmd.PrintErrf("Rebuild failed: %v\n", err)
			}
		}
	}
}

func rebuild(ctx context.Context, cmd *cobra.Command, b Backend) error {
	corpus, err := b.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	stats := corpus.Stats()
	cmd.Printf("Indexed %d chunks from %d documents (%s, %d dimensions)\n",
		stats.Chunks, stats.Documents, stats.EmbeddingModel, stats.Dimensions)
	return nil
}
