package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var worksJSON bool

var worksCmd = &cobra.Command{
	Use:   "works",
	Short: "List the works in the library",
	Long: `Lists every work referenced by at least one chunk, with its chunk
count, sorted by author then title.`,
	Args: cobra.NoArgs,
	RunE: runWorks,
}

func init() {
	worksCmd.Flags().BoolVar(&worksJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(worksCmd)
}

func runWorks(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	works, err := catalogService.ListWorks(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing works: %w", err)
	}

	if worksJSON {
		return outputJSON(cmd, works)
	}

	if len(works) == 0 {
		cmd.Println("The library is empty.")
		return nil
	}
	for _, w := range works {
		cmd.Printf("  %s, %s (%d chunks)\n", w.Author, w.Title, w.ChunksCount)
	}
	return nil
}
