package file

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// Ensure CorrectionFile implements the interface.
var _ driven.CorrectionSource = (*CorrectionFile)(nil)

// CorrectionFile loads the hand-maintained correction table from a
// TOML file of raw-to-canonical string entries:
//
//	[corrections]
//	"Darwin on Species" = "On the Origin of Species"
//	"C.Darwin" = "Charles Darwin"
//
// The file is read once at startup; the resulting table is immutable.
type CorrectionFile struct {
	path string
}

// NewCorrectionFile creates a correction source for the given path.
// An empty path yields an empty table.
func NewCorrectionFile(path string) *CorrectionFile {
	return &CorrectionFile{path: path}
}

// Load reads and validates the table. Duplicate keys and non-canonical
// targets (chains, cycles) are load-time errors.
func (f *CorrectionFile) Load() (*domain.CorrectionTable, error) {
	if f.path == "" {
		return domain.NewCorrectionTable(nil)
	}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		logger.Debug("No correction table at %s", f.path)
		return domain.NewCorrectionTable(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("reading corrections %s: %w", f.path, err)
	}

	var doc struct {
		Corrections map[string]string `toml:"corrections"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing corrections %s: %w", f.path, err)
	}

	table, err := domain.NewCorrectionTable(doc.Corrections)
	if err != nil {
		return nil, fmt.Errorf("validating corrections %s: %w", f.path, err)
	}
	logger.Info("Loaded %d corrections from %s", table.Len(), f.path)
	return table, nil
}
