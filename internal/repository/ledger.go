package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
	"github.com/quincevale/cidery-api/internal/unit"
)

var (
	ErrVesselOccupied      = dao.ErrVesselOccupied
	ErrCapacityExceeded    = dao.ErrCapacityExceeded
	ErrInsufficientVolume  = dao.ErrInsufficientVolume
	ErrBatchNotInVessel    = dao.ErrBatchNotInVessel
	ErrAmbiguousOccupancy  = dao.ErrAmbiguousOccupancy
	ErrNoAdjustment        = dao.ErrNoAdjustment
	ErrAdjustmentDirection = dao.ErrAdjustmentDirection
	ErrLedgerInvariant     = dao.ErrLedgerInvariant
)

type LedgerDAO interface {
	AssignBatch(ctx context.Context, params dao.AssignParams) (dao.TransactionEntry, error)
	Fill(ctx context.Context, params dao.FillParams) (dao.TransactionEntry, error)
	TransferVolume(ctx context.Context, params dao.TransferParams) ([]dao.TransactionEntry, error)
	RecordAdjustment(ctx context.Context, params dao.AdjustParams) (dao.TransactionEntry, bool, error)
	ApplyBlend(ctx context.Context, params dao.BlendParams) (dao.BlendOutcome, error)
	SendToDistillery(ctx context.Context, batchID uint, liters decimal.Decimal, actorID uint) (dao.TransactionEntry, error)
	ReceiveFromDistillery(ctx context.Context, params dao.ReceiveParams) (dao.Batch, dao.TransactionEntry, error)
	Package(ctx context.Context, params dao.PackageParams) (dao.PackagingRun, dao.TransactionEntry, error)
	ComputedVolume(ctx context.Context, batchID uint) (decimal.Decimal, error)
	CurrentVolume(ctx context.Context, batchID uint) (decimal.Decimal, error)
	Occupant(ctx context.Context, vesselID uint) (*uint, error)
	BatchOccupancies(ctx context.Context, batchID uint) ([]dao.Occupancy, error)
	EntriesForBatch(ctx context.Context, batchID uint, limit, offset int) ([]dao.TransactionEntry, error)
}

type LedgerRepository struct {
	dao LedgerDAO
}

func NewLedgerRepository(dao LedgerDAO) *LedgerRepository {
	return &LedgerRepository{
		dao: dao,
	}
}

func entryDaoToDomain(e dao.TransactionEntry) domain.TransactionEntry {
	return domain.TransactionEntry{
		ID:            e.ID,
		BatchID:       e.BatchID,
		VesselID:      e.VesselID,
		Kind:          domain.EntryKind(e.Kind),
		DeltaLiters:   e.DeltaLiters,
		ABV:           e.ABV,
		ReasonCode:    e.ReasonCode,
		CorrelationID: e.CorrelationID,
		ActorID:       e.ActorID,
		RecordedAt:    e.RecordedAt,
	}
}

func entriesDaoToDomain(entries []dao.TransactionEntry) []domain.TransactionEntry {
	result := make([]domain.TransactionEntry, len(entries))
	for i, entry := range entries {
		result[i] = entryDaoToDomain(entry)
	}
	return result
}

func occupancyDaoToDomain(o dao.Occupancy) domain.Occupancy {
	return domain.Occupancy{
		ID:       o.ID,
		VesselID: o.VesselID,
		BatchID:  o.BatchID,
		Volume:   domain.Quantity{Amount: o.VolumeLiters, Unit: unit.Liter},
		Since:    o.Since,
	}
}

func (r *LedgerRepository) AssignBatch(ctx context.Context, params dao.AssignParams) (domain.TransactionEntry, error) {
	entry, err := r.dao.AssignBatch(ctx, params)
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("r.dao.AssignBatch -> %w", err)
	}

	return entryDaoToDomain(entry), nil
}

func (r *LedgerRepository) Fill(ctx context.Context, params dao.FillParams) (domain.TransactionEntry, error) {
	entry, err := r.dao.Fill(ctx, params)
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("r.dao.Fill -> %w", err)
	}

	return entryDaoToDomain(entry), nil
}

func (r *LedgerRepository) TransferVolume(ctx context.Context, params dao.TransferParams) ([]domain.TransactionEntry, error) {
	entries, err := r.dao.TransferVolume(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("r.dao.TransferVolume -> %w", err)
	}

	return entriesDaoToDomain(entries), nil
}

func (r *LedgerRepository) RecordAdjustment(ctx context.Context, params dao.AdjustParams) (domain.TransactionEntry, bool, error) {
	entry, large, err := r.dao.RecordAdjustment(ctx, params)
	if err != nil {
		return domain.TransactionEntry{}, false, fmt.Errorf("r.dao.RecordAdjustment -> %w", err)
	}

	return entryDaoToDomain(entry), large, nil
}

func (r *LedgerRepository) ApplyBlend(ctx context.Context, params dao.BlendParams) (domain.BlendResult, error) {
	outcome, err := r.dao.ApplyBlend(ctx, params)
	if err != nil {
		return domain.BlendResult{}, fmt.Errorf("r.dao.ApplyBlend -> %w", err)
	}

	return domain.BlendResult{
		DestinationBatchID: outcome.Batch.ID,
		TotalLiters:        outcome.TotalLiters,
		WeightedABV:        outcome.WeightedABV,
		Sources:            sourcesDaoToDomain(outcome.Batch.Sources),
		CorrelationID:      outcome.CorrelationID,
	}, nil
}

func (r *LedgerRepository) SendToDistillery(ctx context.Context, batchID uint, liters decimal.Decimal, actorID uint) (domain.TransactionEntry, error) {
	entry, err := r.dao.SendToDistillery(ctx, batchID, liters, actorID)
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("r.dao.SendToDistillery -> %w", err)
	}

	return entryDaoToDomain(entry), nil
}

func (r *LedgerRepository) ReceiveFromDistillery(ctx context.Context, params dao.ReceiveParams) (domain.Batch, domain.TransactionEntry, error) {
	batch, entry, err := r.dao.ReceiveFromDistillery(ctx, params)
	if err != nil {
		return domain.Batch{}, domain.TransactionEntry{}, fmt.Errorf("r.dao.ReceiveFromDistillery -> %w", err)
	}

	return batchDaoToDomain(batch), entryDaoToDomain(entry), nil
}

func (r *LedgerRepository) Package(ctx context.Context, params dao.PackageParams) (domain.PackagingRun, domain.TransactionEntry, error) {
	run, entry, err := r.dao.Package(ctx, params)
	if err != nil {
		return domain.PackagingRun{}, domain.TransactionEntry{}, fmt.Errorf("r.dao.Package -> %w", err)
	}

	domainRun := domain.PackagingRun{
		ID:        run.ID,
		BatchID:   run.BatchID,
		Volume:    domain.Quantity{Amount: run.VolumeLiters, Unit: unit.Liter},
		UnitCount: run.UnitCount,
		Format:    run.Format,
		PackedAt:  run.PackedAt,
		ActorID:   run.ActorID,
	}

	return domainRun, entryDaoToDomain(entry), nil
}

func (r *LedgerRepository) ComputedVolume(ctx context.Context, batchID uint) (decimal.Decimal, error) {
	volume, err := r.dao.ComputedVolume(ctx, batchID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("r.dao.ComputedVolume -> %w", err)
	}

	return volume, nil
}

func (r *LedgerRepository) CurrentVolume(ctx context.Context, batchID uint) (domain.Quantity, error) {
	volume, err := r.dao.CurrentVolume(ctx, batchID)
	if err != nil {
		return domain.Quantity{}, fmt.Errorf("r.dao.CurrentVolume -> %w", err)
	}

	return domain.Quantity{Amount: volume, Unit: unit.Liter}, nil
}

func (r *LedgerRepository) Occupant(ctx context.Context, vesselID uint) (*uint, error) {
	batchID, err := r.dao.Occupant(ctx, vesselID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Occupant -> %w", err)
	}

	return batchID, nil
}

func (r *LedgerRepository) BatchOccupancies(ctx context.Context, batchID uint) ([]domain.Occupancy, error) {
	occupancies, err := r.dao.BatchOccupancies(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.BatchOccupancies -> %w", err)
	}

	result := make([]domain.Occupancy, len(occupancies))
	for i, occupancy := range occupancies {
		result[i] = occupancyDaoToDomain(occupancy)
	}

	return result, nil
}

func (r *LedgerRepository) EntriesForBatch(ctx context.Context, batchID uint, limit, offset int) ([]domain.TransactionEntry, error) {
	entries, err := r.dao.EntriesForBatch(ctx, batchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.EntriesForBatch -> %w", err)
	}

	return entriesDaoToDomain(entries), nil
}
