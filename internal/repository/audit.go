package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

type AuditDAO interface {
	Find(ctx context.Context, filter dao.AuditFilter) ([]dao.AuditLog, error)
}

type AuditRepository struct {
	dao AuditDAO
}

func NewAuditRepository(dao AuditDAO) *AuditRepository {
	return &AuditRepository{
		dao: dao,
	}
}

func (r *AuditRepository) daoToDomain(entry dao.AuditLog) (domain.AuditLogEntry, error) {
	result := domain.AuditLogEntry{
		ID:         entry.ID,
		TableName:  entry.Table,
		RecordID:   entry.RecordID,
		Operation:  domain.AuditOperation(entry.Operation),
		Actor:      entry.ActorID,
		RecordedAt: entry.RecordedAt,
	}

	if err := json.Unmarshal([]byte(entry.OldSnapshot), &result.OldSnapshot); err != nil {
		return domain.AuditLogEntry{}, fmt.Errorf("unmarshal old snapshot -> %w", err)
	}
	if err := json.Unmarshal([]byte(entry.NewSnapshot), &result.NewSnapshot); err != nil {
		return domain.AuditLogEntry{}, fmt.Errorf("unmarshal new snapshot -> %w", err)
	}
	if err := json.Unmarshal([]byte(entry.Diff), &result.Diff); err != nil {
		return domain.AuditLogEntry{}, fmt.Errorf("unmarshal diff -> %w", err)
	}

	return result, nil
}

func (r *AuditRepository) Find(ctx context.Context, filter dao.AuditFilter) ([]domain.AuditLogEntry, error) {
	entries, err := r.dao.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Find -> %w", err)
	}

	result := make([]domain.AuditLogEntry, len(entries))
	for i, entry := range entries {
		result[i], err = r.daoToDomain(entry)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}
