package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/millianlmx/rag/internal/adapter/fs"
	"github.com/millianlmx/rag/internal/domain"
)

var (
	askTopK        int
	askDocID       string
	askContextFile string
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the knowledge base",
	Long: `Ask answers a question using the most relevant document chunks as
context. The answer cites the documents it drew from.

Examples:
  rag ask "how do I configure the scheduler?"
  rag ask --doc 3f2a... "what does this document conclude?"
  rag ask --context-file contract.txt "does this auto-renew?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().StringVar(&askDocID, "doc", "", "restrict retrieval to one document ID")
	askCmd.Flags().StringVar(&askContextFile, "context-file", "", "attach a file as extra context for this question only")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if askTopK > 0 {
		cfg.Retrieve.TopK = askTopK
	}

	var provided string
	if askContextFile != "" {
		text, err := fs.ReadFile(askContextFile)
		if err != nil {
			return fmt.Errorf("failed to read context file: %w", err)
		}
		provided = text
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	askUC, err := newAskUseCase(st)
	if err != nil {
		return err
	}

	qc := askUC.Ask(question, askDocID, provided)

	if askJSON {
		return printJSON(qc)
	}
	return printAnswer(qc)
}

func printAnswer(qc *domain.QueryContext) error {
	if qc.State == domain.StateFailed {
		if len(qc.Results) > 0 {
			fmt.Println("Retrieved context (generation failed):")
			for _, r := range qc.Results {
				fmt.Printf("  [%.3f] %s (chunk %d)\n", r.Score, r.Document.Name, r.Chunk.Ordinal)
			}
			fmt.Println()
		}
		return qc.Err
	}

	fmt.Println(qc.Answer)
	if len(qc.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, doc := range qc.Citations {
			fmt.Printf("  - %s (%s)\n", doc.Name, doc.ID)
		}
	}
	return nil
}

type askOutput struct {
	Question  string                   `json:"question"`
	State     string                   `json:"state"`
	Answer    string                   `json:"answer,omitempty"`
	Citations []domain.Document        `json:"citations,omitempty"`
	Results   []domain.RetrievalResult `json:"results,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

func printJSON(qc *domain.QueryContext) error {
	out := askOutput{
		Question:  qc.Question,
		State:     string(qc.State),
		Answer:    qc.Answer,
		Citations: qc.Citations,
		Results:   qc.Results,
	}
	if qc.Err != nil {
		out.Error = qc.Err.Error()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if qc.Err != nil {
		os.Exit(1)
	}
	return nil
}
