package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

var canonicalizeDryRun bool

var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize [observations.json]",
	Short: "Consolidate raw work observations into canonical works",
	Long: `Reads a JSON array of raw work observations, maps each through the
correction table, elects attributes per canonical work and inserts the
works missing from the store.

With --dry-run the plan is printed and nothing is written. The command
is idempotent: re-running it on an already-canonical store changes
nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runCanonicalize,
}

func init() {
	canonicalizeCmd.Flags().BoolVar(&canonicalizeDryRun, "dry-run", false, "plan only, write nothing")
	rootCmd.AddCommand(canonicalizeCmd)
}

// observationInput mirrors domain.WorkObservation for JSON decoding.
type observationInput struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	OriginalTitle string `json:"original_title,omitempty"`
	Year          int    `json:"year,omitempty"`
	Language      string `json:"language,omitempty"`
	Genre         string `json:"genre,omitempty"`
}

func runCanonicalize(cmd *cobra.Command, args []string) error {
	if canonicalizerService == nil {
		return errors.New("canonicalizer service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading observations: %w", err)
	}

	var inputs []observationInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("parsing observations %s: %w", args[0], err)
	}

	observations := make([]domain.WorkObservation, len(inputs))
	for i, in := range inputs {
		observations[i] = domain.WorkObservation{
			Title:         in.Title,
			Author:        in.Author,
			OriginalTitle: in.OriginalTitle,
			Year:          in.Year,
			Language:      in.Language,
			Genre:         in.Genre,
		}
	}

	plan, err := canonicalizerService.Plan(cmd.Context(), observations)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	cmd.Printf("Plan: %d observations, %d canonical works, %d to insert, %d already present\n",
		len(observations), len(plan.Mapping), len(plan.Inserts), len(plan.Existing))
	for _, w := range plan.Inserts {
		cmd.Printf("  + %s, %s\n", w.Author, w.Title)
	}

	if canonicalizeDryRun {
		cmd.Println("Dry run; nothing written.")
		return nil
	}
	if plan.IsNoop() {
		cmd.Println("Store already canonical; nothing to do.")
		return nil
	}

	report, err := canonicalizerService.Apply(cmd.Context(), plan)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}
	cmd.Printf("Inserted %d works", report.Inserted)
	if report.Skipped > 0 {
		cmd.Printf(" (%d raced with another writer and were skipped)", report.Skipped)
	}
	cmd.Println()
	return nil
}
