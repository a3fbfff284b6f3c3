package repository

import (
	"context"
	"fmt"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
	"github.com/quincevale/cidery-api/internal/unit"
)

var (
	ErrBatchNotFound       = dao.ErrBatchNotFound
	ErrBatchNameExists     = dao.ErrBatchNameExists
	ErrPurchaseLotNotFound = dao.ErrPurchaseLotNotFound
)

type BatchDAO interface {
	Insert(ctx context.Context, batch dao.Batch, sources []dao.BatchSource, actorID uint) (dao.Batch, error)
	GetByID(ctx context.Context, id uint) (dao.Batch, error)
	GetAll(ctx context.Context) ([]dao.Batch, error)
	InsertPurchaseLot(ctx context.Context, lot dao.PurchaseLot, actorID uint) (dao.PurchaseLot, error)
	GetPurchaseLot(ctx context.Context, id uint) (dao.PurchaseLot, error)
}

type BatchRepository struct {
	dao BatchDAO
}

func NewBatchRepository(dao BatchDAO) *BatchRepository {
	return &BatchRepository{
		dao: dao,
	}
}

func (r *BatchRepository) domainToDao(b domain.Batch) (dao.Batch, error) {
	liters, err := b.CurrentVolume.Liters()
	if err != nil {
		return dao.Batch{}, fmt.Errorf("b.CurrentVolume.Liters -> %w", err)
	}

	return dao.Batch{
		ID:                  b.ID,
		Name:                b.Name,
		Status:              string(b.Status),
		CurrentVolumeLiters: liters,
		CurrentABV:          b.CurrentVolume.ABV,
		TaxClass:            string(b.TaxClass),
		Version:             b.Version,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}, nil
}

func (r *BatchRepository) daoToDomain(b dao.Batch) domain.Batch {
	return batchDaoToDomain(b)
}

// batchDaoToDomain is shared with the ledger repository, whose blend and
// distillery-receive paths also return batches.
func batchDaoToDomain(b dao.Batch) domain.Batch {
	return domain.Batch{
		ID:     b.ID,
		Name:   b.Name,
		Status: domain.BatchStatus(b.Status),
		CurrentVolume: domain.Quantity{
			Amount: b.CurrentVolumeLiters,
			Unit:   unit.Liter,
			ABV:    b.CurrentABV,
			HasABV: true,
		},
		TaxClass:  domain.TaxClass(b.TaxClass),
		Sources:   sourcesDaoToDomain(b.Sources),
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func sourcesDomainToDao(sources []domain.SourceRef) []dao.BatchSource {
	daoSources := make([]dao.BatchSource, len(sources))
	for i, src := range sources {
		daoSources[i] = dao.BatchSource{
			SourceKind:    string(src.Kind),
			SourceBatchID: src.BatchID,
			SourceLotID:   src.LotID,
			ProportionPct: src.Proportion,
		}
	}
	return daoSources
}

func sourcesDaoToDomain(sources []dao.BatchSource) []domain.SourceRef {
	if len(sources) == 0 {
		return nil
	}

	refs := make([]domain.SourceRef, len(sources))
	for i, src := range sources {
		refs[i] = domain.SourceRef{
			Kind:       domain.SourceKind(src.SourceKind),
			BatchID:    src.SourceBatchID,
			LotID:      src.SourceLotID,
			Proportion: src.ProportionPct,
		}
	}
	return refs
}

func (r *BatchRepository) lotDaoToDomain(lot dao.PurchaseLot) domain.PurchaseLot {
	return domain.PurchaseLot{
		ID:         lot.ID,
		Vendor:     lot.Vendor,
		Variety:    lot.Variety,
		Quantity:   domain.Quantity{Amount: lot.Amount, Unit: unit.Unit(lot.Unit)},
		ReceivedAt: lot.ReceivedAt,
		CreatedAt:  lot.CreatedAt,
	}
}

func (r *BatchRepository) Create(ctx context.Context, batch domain.Batch, actorID uint) (domain.Batch, error) {
	daoBatch, err := r.domainToDao(batch)
	if err != nil {
		return domain.Batch{}, err
	}

	created, err := r.dao.Insert(ctx, daoBatch, sourcesDomainToDao(batch.Sources), actorID)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id uint) (domain.Batch, error) {
	batch, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("r.dao.GetByID -> %w", err)
	}

	return r.daoToDomain(batch), nil
}

func (r *BatchRepository) GetAll(ctx context.Context) ([]domain.Batch, error) {
	batches, err := r.dao.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetAll -> %w", err)
	}

	result := make([]domain.Batch, len(batches))
	for i, batch := range batches {
		result[i] = r.daoToDomain(batch)
	}

	return result, nil
}

func (r *BatchRepository) CreatePurchaseLot(ctx context.Context, lot domain.PurchaseLot, actorID uint) (domain.PurchaseLot, error) {
	created, err := r.dao.InsertPurchaseLot(ctx, dao.PurchaseLot{
		Vendor:     lot.Vendor,
		Variety:    lot.Variety,
		Amount:     lot.Quantity.Amount,
		Unit:       string(lot.Quantity.Unit),
		ReceivedAt: lot.ReceivedAt,
	}, actorID)
	if err != nil {
		return domain.PurchaseLot{}, fmt.Errorf("r.dao.InsertPurchaseLot -> %w", err)
	}

	return r.lotDaoToDomain(created), nil
}

func (r *BatchRepository) GetPurchaseLot(ctx context.Context, id uint) (domain.PurchaseLot, error) {
	lot, err := r.dao.GetPurchaseLot(ctx, id)
	if err != nil {
		return domain.PurchaseLot{}, fmt.Errorf("r.dao.GetPurchaseLot -> %w", err)
	}

	return r.lotDaoToDomain(lot), nil
}
