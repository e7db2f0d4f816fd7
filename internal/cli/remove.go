package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/millianlmx/rag/internal/adapter/store"
	"github.com/millianlmx/rag/internal/domain"
)

var removeAll bool

var removeCmd = &cobra.Command{
	Use:   "remove <document-id-or-name>",
	Short: "Remove a document and its chunks",
	Long: `Remove deletes a document, its chunks and their vectors from the store.
The argument is a document ID or, if no ID matches, a document name.

Examples:
  rag remove 3f2a9c10-...    # Remove by ID
  rag remove notes.txt       # Remove by name
  rag remove --all           # Empty the knowledge base`,
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "remove every document")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if !removeAll && len(args) != 1 {
		return errors.New("expected a document ID or name, or --all")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if removeAll {
		docs, err := st.ListDocuments()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := st.Delete(doc.ID); err != nil {
				return fmt.Errorf("failed to remove %s: %w", doc.Name, err)
			}
		}
		fmt.Printf("Removed %d documents.\n", len(docs))
		return nil
	}

	doc, err := resolveDocument(st, args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(doc.ID); err != nil {
		return fmt.Errorf("failed to remove %s: %w", doc.Name, err)
	}
	fmt.Printf("Removed %s (%s).\n", doc.Name, doc.ID)
	return nil
}

// resolveDocument looks up a document by ID, then by unique name.
func resolveDocument(st *store.BoltStore, ref string) (domain.Document, error) {
	if doc, err := st.GetDocument(ref); err == nil {
		return doc, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Document{}, err
	}

	docs, err := st.ListDocuments()
	if err != nil {
		return domain.Document{}, err
	}

	var matches []domain.Document
	for _, doc := range docs {
		if doc.Name == ref {
			matches = append(matches, doc)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Document{}, fmt.Errorf("%w: no document with ID or name %q", domain.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Document{}, fmt.Errorf("name %q matches %d documents, use an ID", ref, len(matches))
	}
}
