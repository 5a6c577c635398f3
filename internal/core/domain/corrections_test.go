package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectionTableLookup(t *testing.T) {
	table, err := NewCorrectionTable(map[string]string{
		"Darwin on Species": "On the Origin of Species",
		"C.Darwin":          "Charles Darwin",
	})
	require.NoError(t, err)

	assert.Equal(t, "On the Origin of Species", table.Canonical("Darwin on Species"))
	assert.Equal(t, "On the Origin of Species", table.Canonical("  Darwin on Species  "))

	// Unknown values pass through unchanged.
	assert.Equal(t, "Essays", table.Canonical("Essays"))

	ref := table.CanonicalRef(WorkRef{Title: "Darwin on Species", Author: "C.Darwin"})
	assert.Equal(t, WorkRef{Title: "On the Origin of Species", Author: "Charles Darwin"}, ref)
}

func TestCorrectionTableRejectsChains(t *testing.T) {
	_, err := NewCorrectionTable(map[string]string{
		"a": "b",
		"b": "c",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCorrectionTableSelfMappingAllowed(t *testing.T) {
	// A canonical form may appear as its own key; that is a fixed point,
	// not a chain.
	table, err := NewCorrectionTable(map[string]string{
		"Charles Darwin": "Charles Darwin",
		"C.Darwin":       "Charles Darwin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Charles Darwin", table.Canonical("C.Darwin"))
}

func TestCorrectionTableRejectsKeysCollidingAfterTrim(t *testing.T) {
	_, err := NewCorrectionTable(map[string]string{
		"C.Darwin":  "Charles Darwin",
		"C.Darwin ": "Charles Darwin",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCorrectionTableRejectsEmptyEntries(t *testing.T) {
	_, err := NewCorrectionTable(map[string]string{"": "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewCorrectionTable(map[string]string{"x": "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNilCorrectionTable(t *testing.T) {
	var table *CorrectionTable
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, "Essays", table.Canonical("Essays"))
	ref := table.CanonicalRef(WorkRef{Title: "Essays", Author: "Montaigne"})
	assert.Equal(t, WorkRef{Title: "Essays", Author: "Montaigne"}, ref)
}
