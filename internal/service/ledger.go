package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

var (
	ErrVesselOccupied      = repository.ErrVesselOccupied
	ErrCapacityExceeded    = repository.ErrCapacityExceeded
	ErrInsufficientVolume  = repository.ErrInsufficientVolume
	ErrBatchNotInVessel    = repository.ErrBatchNotInVessel
	ErrAmbiguousOccupancy  = repository.ErrAmbiguousOccupancy
	ErrNoAdjustment        = repository.ErrNoAdjustment
	ErrAdjustmentDirection = repository.ErrAdjustmentDirection
	ErrLedgerInvariant     = repository.ErrLedgerInvariant
)

type LedgerRepository interface {
	AssignBatch(ctx context.Context, params dao.AssignParams) (domain.TransactionEntry, error)
	Fill(ctx context.Context, params dao.FillParams) (domain.TransactionEntry, error)
	TransferVolume(ctx context.Context, params dao.TransferParams) ([]domain.TransactionEntry, error)
	RecordAdjustment(ctx context.Context, params dao.AdjustParams) (domain.TransactionEntry, bool, error)
	SendToDistillery(ctx context.Context, batchID uint, liters decimal.Decimal, actorID uint) (domain.TransactionEntry, error)
	ReceiveFromDistillery(ctx context.Context, params dao.ReceiveParams) (domain.Batch, domain.TransactionEntry, error)
	Package(ctx context.Context, params dao.PackageParams) (domain.PackagingRun, domain.TransactionEntry, error)
	ComputedVolume(ctx context.Context, batchID uint) (decimal.Decimal, error)
	CurrentVolume(ctx context.Context, batchID uint) (domain.Quantity, error)
	Occupant(ctx context.Context, vesselID uint) (*uint, error)
	BatchOccupancies(ctx context.Context, batchID uint) ([]domain.Occupancy, error)
	EntriesForBatch(ctx context.Context, batchID uint, limit, offset int) ([]domain.TransactionEntry, error)
}

type LedgerService struct {
	repo LedgerRepository
}

func NewLedgerService(repo LedgerRepository) *LedgerService {
	return &LedgerService{
		repo: repo,
	}
}

// Assign fills a batch into an empty vessel. The volume may arrive in any
// volume unit; the ledger stores liters.
func (s *LedgerService) Assign(ctx context.Context, batchID, vesselID uint, volume domain.Quantity, reason string, actorID uint) (domain.TransactionEntry, error) {
	liters, err := volume.Liters()
	if err != nil {
		return domain.TransactionEntry{}, err
	}

	entry, err := s.repo.AssignBatch(ctx, dao.AssignParams{
		BatchID:  batchID,
		VesselID: vesselID,
		Liters:   liters,
		ABV:      volume.ABV,
		Reason:   reason,
		ActorID:  actorID,
	})
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("s.repo.AssignBatch -> %w", err)
	}

	return entry, nil
}

// Fill tops up a batch already occupying a vessel.
func (s *LedgerService) Fill(ctx context.Context, batchID, vesselID uint, volume domain.Quantity, reason string, actorID uint) (domain.TransactionEntry, error) {
	liters, err := volume.Liters()
	if err != nil {
		return domain.TransactionEntry{}, err
	}

	entry, err := s.repo.Fill(ctx, dao.FillParams{
		BatchID:  batchID,
		VesselID: vesselID,
		Liters:   liters,
		ABV:      volume.ABV,
		Reason:   reason,
		ActorID:  actorID,
	})
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("s.repo.Fill -> %w", err)
	}

	return entry, nil
}

// Transfer moves volume between vessels. The two legs share a correlation id
// and their deltas sum to zero.
func (s *LedgerService) Transfer(ctx context.Context, batchID, fromVesselID, toVesselID uint, volume domain.Quantity, reason string, actorID uint) ([]domain.TransactionEntry, error) {
	liters, err := volume.Liters()
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.TransferVolume(ctx, dao.TransferParams{
		BatchID:      batchID,
		FromVesselID: fromVesselID,
		ToVesselID:   toVesselID,
		Liters:       liters,
		Reason:       reason,
		ActorID:      actorID,
	})
	if err != nil {
		return nil, fmt.Errorf("s.repo.TransferVolume -> %w", err)
	}

	return entries, nil
}

// Adjust reconciles a measured volume against the ledger. A large correction
// still commits; the returned warnings tell the caller it deserves review.
func (s *LedgerService) Adjust(ctx context.Context, batchID uint, vesselID *uint, measured domain.Quantity, reason string, actorID uint) (domain.TransactionEntry, []domain.Warning, error) {
	liters, err := measured.Liters()
	if err != nil {
		return domain.TransactionEntry{}, nil, err
	}

	entry, large, err := s.repo.RecordAdjustment(ctx, dao.AdjustParams{
		BatchID:        batchID,
		VesselID:       vesselID,
		MeasuredLiters: liters,
		Reason:         reason,
		ActorID:        actorID,
	})
	if err != nil {
		return domain.TransactionEntry{}, nil, fmt.Errorf("s.repo.RecordAdjustment -> %w", err)
	}

	var warnings []domain.Warning
	if large {
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarnLargeAdjustment,
			Message: fmt.Sprintf("adjustment of %s L exceeds 10%% of batch volume", entry.DeltaLiters),
		})
	}

	return entry, warnings, nil
}

func (s *LedgerService) SendToDistillery(ctx context.Context, batchID uint, volume domain.Quantity, actorID uint) (domain.TransactionEntry, error) {
	liters, err := volume.Liters()
	if err != nil {
		return domain.TransactionEntry{}, err
	}

	entry, err := s.repo.SendToDistillery(ctx, batchID, liters, actorID)
	if err != nil {
		return domain.TransactionEntry{}, fmt.Errorf("s.repo.SendToDistillery -> %w", err)
	}

	return entry, nil
}

func (s *LedgerService) ReceiveFromDistillery(ctx context.Context, name string, volume domain.Quantity, sourceBatchID, vesselID, actorID uint) (domain.Batch, domain.TransactionEntry, error) {
	liters, err := volume.Liters()
	if err != nil {
		return domain.Batch{}, domain.TransactionEntry{}, err
	}

	batch, entry, err := s.repo.ReceiveFromDistillery(ctx, dao.ReceiveParams{
		Name:          name,
		Liters:        liters,
		ABV:           volume.ABV,
		SourceBatchID: sourceBatchID,
		VesselID:      vesselID,
		ActorID:       actorID,
	})
	if err != nil {
		return domain.Batch{}, domain.TransactionEntry{}, fmt.Errorf("s.repo.ReceiveFromDistillery -> %w", err)
	}

	return batch, entry, nil
}

func (s *LedgerService) Package(ctx context.Context, batchID uint, volume domain.Quantity, unitCount int, format string, actorID uint) (domain.PackagingRun, domain.TransactionEntry, error) {
	liters, err := volume.Liters()
	if err != nil {
		return domain.PackagingRun{}, domain.TransactionEntry{}, err
	}

	run, entry, err := s.repo.Package(ctx, dao.PackageParams{
		BatchID:   batchID,
		Liters:    liters,
		UnitCount: unitCount,
		Format:    format,
		ActorID:   actorID,
	})
	if err != nil {
		return domain.PackagingRun{}, domain.TransactionEntry{}, fmt.Errorf("s.repo.Package -> %w", err)
	}

	return run, entry, nil
}

// CurrentVolume returns the reconciled volume of a batch. A stored projection
// that disagrees with the transaction log surfaces as ErrLedgerInvariant.
func (s *LedgerService) CurrentVolume(ctx context.Context, batchID uint) (domain.Quantity, error) {
	volume, err := s.repo.CurrentVolume(ctx, batchID)
	if err != nil {
		return domain.Quantity{}, fmt.Errorf("s.repo.CurrentVolume -> %w", err)
	}

	return volume, nil
}

func (s *LedgerService) Occupant(ctx context.Context, vesselID uint) (*uint, error) {
	batchID, err := s.repo.Occupant(ctx, vesselID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Occupant -> %w", err)
	}

	return batchID, nil
}

func (s *LedgerService) Occupancies(ctx context.Context, batchID uint) ([]domain.Occupancy, error) {
	occupancies, err := s.repo.BatchOccupancies(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.BatchOccupancies -> %w", err)
	}

	return occupancies, nil
}

// History lists a batch's transaction entries in recording order.
func (s *LedgerService) History(ctx context.Context, batchID uint, limit, offset int) ([]domain.TransactionEntry, error) {
	entries, err := s.repo.EntriesForBatch(ctx, batchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.EntriesForBatch -> %w", err)
	}

	return entries, nil
}
