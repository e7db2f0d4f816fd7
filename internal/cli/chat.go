package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/millianlmx/rag/internal/cache"
	"github.com/millianlmx/rag/internal/domain"
)

var chatDocID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question session",
	Long: `Chat starts an interactive loop that answers questions against the
knowledge base. Repeated questions are served from an in-memory cache.

Commands inside the session:
  exit, quit   end the session
  clear        drop the answer cache`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatDocID, "doc", "", "restrict retrieval to one document ID")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	askUC, err := newAskUseCase(st)
	if err != nil {
		return err
	}

	answers := cache.NewAnswerCache(100, 10*time.Minute)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("rag chat. Type a question, or exit to quit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		switch question {
		case "exit", "quit":
			return scanner.Err()
		case "clear":
			answers.Invalidate()
			fmt.Println("Cache cleared.")
			continue
		}

		if qc, ok := answers.Get(question, chatDocID); ok {
			printChatAnswer(qc, true)
			continue
		}

		qc := askUC.Ask(question, chatDocID, "")
		if qc.State == domain.StateFailed {
			fmt.Printf("Error: %v\n", qc.Err)
			continue
		}
		answers.Put(question, chatDocID, qc)
		printChatAnswer(qc, false)
	}
	return scanner.Err()
}

func printChatAnswer(qc *domain.QueryContext, cached bool) {
	fmt.Println(qc.Answer)
	if len(qc.Citations) > 0 {
		names := make([]string, len(qc.Citations))
		for i, doc := range qc.Citations {
			names[i] = doc.Name
		}
		fmt.Printf("Sources: %s\n", strings.Join(names, ", "))
	}
	if cached {
		fmt.Println("(cached)")
	}
	fmt.Println()
}
