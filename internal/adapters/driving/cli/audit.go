package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var auditJSON bool

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the store for referential inconsistencies",
	Long: `Cross-checks the four collections and reports orphaned documents,
chunks or summaries referencing unknown works, summaries whose section
owns no chunks, and chunks no summary covers.

The audit is read-only; it never repairs.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "output findings as JSON")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	if auditService == nil {
		return errors.New("audit service not configured")
	}

	findings, err := auditService.Audit(cmd.Context())
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if auditJSON {
		return outputJSON(cmd, findings)
	}

	if len(findings) == 0 {
		cmd.Println("No inconsistencies found.")
		return nil
	}
	cmd.Printf("%d findings:\n", len(findings))
	for _, f := range findings {
		cmd.Printf("  %s\n", f.String())
	}
	return nil
}
