package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/millianlmx/rag/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Store:            %s\n", config.StorePath(GetRootDir()))
	fmt.Printf("Documents:        %d\n", stats.TotalDocs)
	fmt.Printf("Chunks:           %d\n", stats.TotalChunks)
	fmt.Printf("Embedding model:  %s (dim %d)\n", cfg.Embedding.Model, cfg.Embedding.Dimension)
	fmt.Printf("Generation model: %s\n", cfg.Generation.Model)
	return nil
}
