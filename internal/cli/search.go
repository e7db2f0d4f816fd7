package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/millianlmx/rag/internal/usecase"
)

var (
	searchTopK  int
	searchDocID string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge base without generating an answer",
	Long: `Search embeds the query and prints the most similar chunks with their
similarity scores. Useful for inspecting what ask would retrieve.

Examples:
  rag search "error handling"
  rag search -k 10 "deployment checklist"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of chunks to return (default from config)")
	searchCmd.Flags().StringVar(&searchDocID, "doc", "", "restrict search to one document ID")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	topK := cfg.Retrieve.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	emb, err := newEmbedder()
	if err != nil {
		return err
	}
	retriever := usecase.NewRetrieveUseCase(st, emb, cfg.Retrieve.MinScore, cfg.Retry.Attempts, retryDelay())

	results, err := retriever.Retrieve(query, topK, searchDocID)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s (chunk %d)\n", i+1, r.Score, r.Document.Name, r.Chunk.Ordinal)
		fmt.Printf("   %s\n", snippet(r.Chunk.Text, 160))
	}
	return nil
}

// snippet returns the first maxChars of text on a single line.
func snippet(text string, maxChars int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "..."
}
