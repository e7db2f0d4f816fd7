package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/millianlmx/rag/internal/adapter/fs"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest documents into the knowledge base",
	Long: `Ingest plain-text documents so they can be queried with ask or chat.
Directories are walked for matching files (*.txt and *.md by default);
files are ingested as-is. The store lives in .rag/store.db under the
data directory.

Examples:
  rag ingest notes.txt            # Ingest a single file
  rag ingest ./docs ./articles    # Ingest two directories`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No matching files found.")
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ingestUC, err := newIngestUseCase(st)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	var (
		docsIngested int
		chunksStored int
		chunksFailed int
		warnings     []string
	)

	for _, file := range files {
		result, err := ingestUC.IngestFile(file.Path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", file.Path, err))
			bar.Add(1)
			continue
		}
		if result.ChunksCreated > 0 {
			docsIngested++
		}
		chunksStored += result.ChunksCreated
		chunksFailed += result.ChunksFailed
		for _, e := range result.Errors {
			warnings = append(warnings, fmt.Sprintf("%s: %s", file.Name, e))
		}
		bar.Add(1)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Documents ingested: %d\n", docsIngested)
	fmt.Printf("  Chunks stored:      %d\n", chunksStored)
	if chunksFailed > 0 {
		fmt.Printf("  Chunks failed:      %d\n", chunksFailed)
	}

	if len(warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	return nil
}

// collectFiles expands the given paths into ingestable files. Directories
// are walked with the configured include/exclude patterns.
func collectFiles(paths []string) ([]fs.FileInfo, error) {
	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)

	var files []fs.FileInfo
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("path does not exist: %w", err)
		}

		if info.IsDir() {
			found, err := walker.Walk(abs)
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", abs, err)
			}
			files = append(files, found...)
			continue
		}

		files = append(files, fs.FileInfo{Path: abs, Name: info.Name(), Size: info.Size()})
	}
	return files, nil
}
