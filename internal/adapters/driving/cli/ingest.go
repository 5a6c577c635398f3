package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [batch.json]",
	Short: "Ingest a chunk batch into the library",
	Long: `Reads a finalized chunk batch from a JSON file and writes it into
the store: the canonical work first, then the document and its chunks.

A batch whose source id is already present is rejected; delete and
re-ingest to replace a document.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading batch: %w", err)
	}

	var batch domain.ChunkBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parsing batch %s: %w", args[0], err)
	}

	report, err := ingestService.Ingest(cmd.Context(), batch)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %s - %s, %s: %d chunks", report.SourceID,
		report.Work.Title, report.Work.Author, report.Chunks)
	if report.WorksCreated > 0 {
		cmd.Printf(" (%d new work)", report.WorksCreated)
	}
	cmd.Println()
	return nil
}
