package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchRebuild bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Show the passages nearest to a query",
	Long: `Embed the query and list the nearest knowledge base chunks by
squared Euclidean distance, lowest first. No answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 3, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchRebuild, "rebuild", false, "rebuild the index before searching")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}

	corpus, err := b.Corpus(cmd.Context(), searchRebuild)
	if err != nil {
		return err
	}

	results, err := corpus.Retrieve(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputSearchTable(cmd, results)
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s #%d (distance %.4f)\n", i+1, r.Metadata.Source, r.Metadata.ChunkIndex, r.Distance)
		cmd.Printf("      %s\n", snippet(r.Text, 160))
		cmd.Println()
	}
}

// snippet flattens text to one line of at most n runes.
func snippet(text string, n int) string {
	line := strings.Join(strings.Fields(text), " ")
	runes := []rune(line)
	if len(runes) <= n {
		return line
	}
	return string(runes[:n]) + "..."
}
