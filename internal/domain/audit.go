package domain

import (
	"reflect"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type AuditOperation string

const (
	AuditCreate     AuditOperation = "Create"
	AuditUpdate     AuditOperation = "Update"
	AuditDelete     AuditOperation = "Delete"
	AuditSoftDelete AuditOperation = "SoftDelete"
	AuditRestore    AuditOperation = "Restore"
)

type DiffKind string

const (
	DiffAdded    DiffKind = "Added"
	DiffRemoved  DiffKind = "Removed"
	DiffModified DiffKind = "Modified"
)

type FieldDiff struct {
	Field    string   `json:"field"`
	Kind     DiffKind `json:"kind"`
	OldValue any      `json:"old_value,omitempty"`
	NewValue any      `json:"new_value,omitempty"`
}

// AuditLogEntry is an immutable record of one mutation. Both full snapshots
// are always kept alongside the derived diff so the diff can be re-derived if
// the algorithm changes.
type AuditLogEntry struct {
	ID          string // uuid
	TableName   string
	RecordID    string
	Operation   AuditOperation
	OldSnapshot map[string]any
	NewSnapshot map[string]any
	Diff        []FieldDiff
	Actor       uint
	RecordedAt  time.Time
}

// Bookkeeping fields carried on every row that say nothing about the mutation
// itself, so they are excluded from diffs.
var auditIgnoredFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"version":    true,
}

// ComputeDiff produces a minimal field-level diff between two snapshots.
// Fields identical in both are omitted; values compare structurally, so nested
// maps and times compare by content rather than reference. ComputeDiff(x, x)
// is always empty.
func ComputeDiff(old, new map[string]any) []FieldDiff {
	fields := make(map[string]bool, len(old)+len(new))
	for k := range old {
		fields[k] = true
	}
	for k := range new {
		fields[k] = true
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		if auditIgnoredFields[k] {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	var diffs []FieldDiff
	for _, name := range names {
		oldVal, inOld := old[name]
		newVal, inNew := new[name]

		switch {
		case inOld && !inNew:
			diffs = append(diffs, FieldDiff{Field: name, Kind: DiffRemoved, OldValue: oldVal})
		case !inOld && inNew:
			diffs = append(diffs, FieldDiff{Field: name, Kind: DiffAdded, NewValue: newVal})
		case !auditEqual(oldVal, newVal):
			diffs = append(diffs, FieldDiff{Field: name, Kind: DiffModified, OldValue: oldVal, NewValue: newVal})
		}
	}

	return diffs
}

func auditEqual(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
		return false
	}

	if ad, ok := a.(decimal.Decimal); ok {
		if bd, ok := b.(decimal.Decimal); ok {
			return ad.Equal(bd)
		}
		return false
	}

	return reflect.DeepEqual(a, b)
}
