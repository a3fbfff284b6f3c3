package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

type mockAuditDAO struct {
	findFn func(ctx context.Context, filter dao.AuditFilter) ([]dao.AuditLog, error)
}

func (m *mockAuditDAO) Find(ctx context.Context, filter dao.AuditFilter) ([]dao.AuditLog, error) {
	return m.findFn(ctx, filter)
}

func TestAuditRepository_Find(t *testing.T) {
	recorded := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	repo := NewAuditRepository(&mockAuditDAO{
		findFn: func(ctx context.Context, filter dao.AuditFilter) ([]dao.AuditLog, error) {
			assert.Equal(t, "vessels", filter.TableName)

			return []dao.AuditLog{
				{
					ID:          "0d7e4f9a-1111-2222-3333-444455556666",
					Table:       "vessels",
					RecordID:    "7",
					Operation:   "Update",
					OldSnapshot: `{"status":"Available"}`,
					NewSnapshot: `{"status":"Occupied"}`,
					Diff:        `[{"field":"status","kind":"Modified","old_value":"Available","new_value":"Occupied"}]`,
					ActorID:     3,
					RecordedAt:  recorded,
				},
			}, nil
		},
	})

	entries, err := repo.Find(context.Background(), dao.AuditFilter{TableName: "vessels"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "vessels", entry.TableName)
	assert.Equal(t, "7", entry.RecordID)
	assert.Equal(t, domain.AuditUpdate, entry.Operation)
	assert.Equal(t, uint(3), entry.Actor)
	assert.Equal(t, recorded, entry.RecordedAt)
	assert.Equal(t, map[string]any{"status": "Available"}, entry.OldSnapshot)
	assert.Equal(t, map[string]any{"status": "Occupied"}, entry.NewSnapshot)
	require.Len(t, entry.Diff, 1)
	assert.Equal(t, "status", entry.Diff[0].Field)
	assert.Equal(t, domain.DiffModified, entry.Diff[0].Kind)
}

func TestAuditRepository_Find_BadSnapshot(t *testing.T) {
	repo := NewAuditRepository(&mockAuditDAO{
		findFn: func(ctx context.Context, filter dao.AuditFilter) ([]dao.AuditLog, error) {
			return []dao.AuditLog{{OldSnapshot: "{", NewSnapshot: "null", Diff: "null"}}, nil
		},
	})

	_, err := repo.Find(context.Background(), dao.AuditFilter{})
	assert.Error(t, err)
}
