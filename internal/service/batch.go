package service

import (
	"context"
	"fmt"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository"
)

var (
	ErrBatchNotFound       = repository.ErrBatchNotFound
	ErrBatchNameExists     = repository.ErrBatchNameExists
	ErrPurchaseLotNotFound = repository.ErrPurchaseLotNotFound
)

type BatchRepository interface {
	Create(ctx context.Context, batch domain.Batch, actorID uint) (domain.Batch, error)
	GetByID(ctx context.Context, id uint) (domain.Batch, error)
	GetAll(ctx context.Context) ([]domain.Batch, error)
	CreatePurchaseLot(ctx context.Context, lot domain.PurchaseLot, actorID uint) (domain.PurchaseLot, error)
	GetPurchaseLot(ctx context.Context, id uint) (domain.PurchaseLot, error)
}

type BatchService struct {
	repo BatchRepository
}

func NewBatchService(repo BatchRepository) *BatchService {
	return &BatchService{
		repo: repo,
	}
}

// CreateBatch registers a new batch with its provenance sources. The batch
// starts empty; volume only enters through ledger fills.
func (s *BatchService) CreateBatch(ctx context.Context, batch domain.Batch, actorID uint) (domain.Batch, error) {
	if batch.Status == "" {
		batch.Status = domain.BatchFermentation
	}
	batch.TaxClass = domain.TaxClassForABV(batch.CurrentVolume.ABV)

	created, err := s.repo.Create(ctx, batch, actorID)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *BatchService) GetBatch(ctx context.Context, id uint) (domain.Batch, error) {
	batch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return batch, nil
}

func (s *BatchService) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	batches, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAll -> %w", err)
	}

	return batches, nil
}

func (s *BatchService) CreatePurchaseLot(ctx context.Context, lot domain.PurchaseLot, actorID uint) (domain.PurchaseLot, error) {
	created, err := s.repo.CreatePurchaseLot(ctx, lot, actorID)
	if err != nil {
		return domain.PurchaseLot{}, fmt.Errorf("s.repo.CreatePurchaseLot -> %w", err)
	}

	return created, nil
}

func (s *BatchService) GetPurchaseLot(ctx context.Context, id uint) (domain.PurchaseLot, error) {
	lot, err := s.repo.GetPurchaseLot(ctx, id)
	if err != nil {
		return domain.PurchaseLot{}, fmt.Errorf("s.repo.GetPurchaseLot -> %w", err)
	}

	return lot, nil
}
