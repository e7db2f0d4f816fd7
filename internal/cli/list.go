package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := st.ListDocuments()
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("No documents ingested.")
		return nil
	}

	for _, doc := range docs {
		chunks, err := st.GetChunksByDocument(doc.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %-30s  %3d chunks  %s\n",
			doc.ID, doc.Name, len(chunks), doc.IngestedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
