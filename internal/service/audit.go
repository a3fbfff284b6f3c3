package service

import (
	"context"
	"fmt"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

type AuditRepository interface {
	Find(ctx context.Context, filter dao.AuditFilter) ([]domain.AuditLogEntry, error)
}

type AuditService struct {
	repo AuditRepository
}

func NewAuditService(repo AuditRepository) *AuditService {
	return &AuditService{
		repo: repo,
	}
}

// Query returns audit entries matching the filter, newest first.
func (s *AuditService) Query(ctx context.Context, filter dao.AuditFilter) ([]domain.AuditLogEntry, error) {
	entries, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return entries, nil
}
