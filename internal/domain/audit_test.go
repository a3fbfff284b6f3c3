package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiff_Idempotent(t *testing.T) {
	snapshot := map[string]any{
		"name":           "Tank 3",
		"status":         "Occupied",
		"capacity":       dec("1500"),
		"current_volume": dec("1200.250"),
		"since":          time.Date(2025, 10, 2, 9, 0, 0, 0, time.UTC),
	}

	assert.Empty(t, ComputeDiff(snapshot, snapshot))
}

func TestComputeDiff_StructuralEquality(t *testing.T) {
	// Same instant in different locations and the same decimal at different
	// scales compare equal by content.
	old := map[string]any{
		"volume":   dec("100"),
		"measured": time.Date(2025, 10, 2, 9, 0, 0, 0, time.UTC),
		"sources":  map[string]any{"batch": 7},
	}
	new := map[string]any{
		"volume":   dec("100.000"),
		"measured": time.Date(2025, 10, 2, 4, 0, 0, 0, time.FixedZone("EST", -5*3600)),
		"sources":  map[string]any{"batch": 7},
	}

	assert.Empty(t, ComputeDiff(old, new))
}

func TestComputeDiff_Classification(t *testing.T) {
	old := map[string]any{
		"status":  "Available",
		"note":    "clean",
		"removed": true,
	}
	new := map[string]any{
		"status": "Occupied",
		"note":   "clean",
		"added":  42,
	}

	diffs := ComputeDiff(old, new)
	require.Len(t, diffs, 3)

	byField := map[string]FieldDiff{}
	for _, d := range diffs {
		byField[d.Field] = d
	}

	assert.Equal(t, DiffAdded, byField["added"].Kind)
	assert.Equal(t, DiffRemoved, byField["removed"].Kind)
	assert.Equal(t, DiffModified, byField["status"].Kind)
	assert.Equal(t, "Available", byField["status"].OldValue)
	assert.Equal(t, "Occupied", byField["status"].NewValue)
}

func TestComputeDiff_IgnoresBookkeepingFields(t *testing.T) {
	old := map[string]any{"id": 1, "updated_at": time.Now(), "version": 3, "status": "Aging"}
	new := map[string]any{"id": 1, "updated_at": time.Now().Add(time.Hour), "version": 4, "status": "Aging"}

	assert.Empty(t, ComputeDiff(old, new))
}
