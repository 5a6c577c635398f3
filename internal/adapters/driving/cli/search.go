package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

var (
	searchMode     string
	searchLimit    int
	searchSections int
	searchTitle    string
	searchAuthor   string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the library",
	Long: `Searches the library for the given query.

By default the query is classified automatically: short single-topic
queries search chunks directly, longer or multi-topic queries match
section summaries first and then drill into the winning sections.
Use --mode to force either strategy.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "auto", "retrieval mode: auto, flat or hierarchical")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum chunks per section (0 = default)")
	searchCmd.Flags().IntVar(&searchSections, "sections", 0, "maximum section groups (0 = default)")
	searchCmd.Flags().StringVar(&searchTitle, "work-title", "", "restrict to a work title")
	searchCmd.Flags().StringVar(&searchAuthor, "work-author", "", "restrict to a work author")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func parseMode(s string) (domain.QueryMode, error) {
	switch s {
	case "", "auto":
		return domain.QueryModeAuto, nil
	case "flat":
		return domain.QueryModeFlat, nil
	case "hierarchical":
		return domain.QueryModeHierarchical, nil
	default:
		return "", fmt.Errorf("invalid mode %q (want auto, flat or hierarchical)", s)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	mode, err := parseMode(searchMode)
	if err != nil {
		return err
	}

	opts := domain.RetrieveOptions{
		Mode:          mode,
		Limit:         searchLimit,
		SectionsLimit: searchSections,
	}
	if searchTitle != "" || searchAuthor != "" {
		opts.Filter = &domain.WorkRef{Title: searchTitle, Author: searchAuthor}
	}

	result, err := retrievalService.Retrieve(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, result)
	}
	return outputSearchText(cmd, result)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, result *domain.RetrievalResult) error {
	if result.TotalChunks() == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Mode: %s\n", result.Mode)
	if result.Fallback {
		cmd.Println("(no section matched; fell back to flat search)")
	}
	cmd.Println()

	if result.Mode == domain.QueryModeFlat {
		for i, sc := range result.Chunks {
			printChunk(cmd, i+1, sc)
		}
		return nil
	}

	for _, group := range result.Groups {
		if group.SectionPath == "" {
			cmd.Println("Ungrouped results:")
		} else {
			cmd.Printf("Section %s - %s, %s (%.2f)\n",
				group.SectionPath, group.Work.Title, group.Work.Author, group.Score)
			if group.SummaryText != "" {
				cmd.Printf("  %s\n", group.SummaryText)
			}
		}
		for i, sc := range group.Chunks {
			printChunk(cmd, i+1, sc)
		}
		cmd.Println()
	}
	return nil
}

func printChunk(cmd *cobra.Command, n int, sc domain.ScoredChunk) {
	cmd.Printf("  [%d] %s - %s (%.2f)\n", n, sc.Chunk.Work.Title, sc.Chunk.Work.Author, sc.Score)
	if sc.Chunk.SectionPath != "" {
		cmd.Printf("      Section: %s\n", sc.Chunk.SectionPath)
	}
	cmd.Printf("      %s\n", sc.Chunk.Text)
}
