package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quincevale/cidery-api/internal/domain"
)

type PackagingRun struct {
	ID           uint            `gorm:"primaryKey"`
	BatchID      uint            `gorm:"index;not null"`
	VolumeLiters decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	UnitCount    int             `gorm:"not null"`
	Format       string          `gorm:"size:32;not null"`
	PackedAt     time.Time       `gorm:"not null"`
	ActorID      uint            `gorm:"not null"`
}

// SendToDistillery deducts volume leaving the cidery for distillation. The
// leg has no destination vessel; the paired volume comes back through
// ReceiveFromDistillery as a new spirit batch.
func (d *LedgerDAO) SendToDistillery(ctx context.Context, batchID uint, liters decimal.Decimal, actorID uint) (TransactionEntry, error) {
	var entry TransactionEntry
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch, err := lockBatch(tx, batchID)
		if err != nil {
			return err
		}

		occupancy, err := adjustableOccupancy(tx, batch.ID, nil)
		if err != nil {
			return err
		}
		if occupancy == nil {
			return ErrBatchNotInVessel
		}
		if liters.GreaterThan(occupancy.VolumeLiters) || liters.GreaterThan(batch.CurrentVolumeLiters) {
			return ErrInsufficientVolume
		}

		old, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		vesselID := occupancy.VesselID

		remaining := occupancy.VolumeLiters.Sub(liters)
		if remaining.IsZero() {
			if err = endOccupancy(tx, occupancy, now); err != nil {
				return err
			}
			if err = freeVessel(tx, vesselID); err != nil {
				return err
			}
		} else {
			if err = updateOccupancyVolume(tx, occupancy, remaining); err != nil {
				return err
			}
		}

		if err = updateBatchVolume(tx, &batch, batch.CurrentVolumeLiters.Sub(liters), batch.CurrentABV); err != nil {
			return err
		}

		entry = TransactionEntry{
			ID:            uuid.NewString(),
			BatchID:       batch.ID,
			VesselID:      &vesselID,
			Kind:          string(domain.EntryTransfer),
			DeltaLiters:   liters.Neg(),
			ABV:           batch.CurrentABV,
			ReasonCode:    domain.ReasonDistillerySend,
			CorrelationID: uuid.NewString(),
			ActorID:       actorID,
			RecordedAt:    now,
		}
		if err = tx.Create(&entry).Error; err != nil {
			return err
		}

		new, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		return appendAudit(tx, auditTableBatches, batch.ID, auditOpUpdate, old, new, actorID)
	})
	if err != nil {
		return TransactionEntry{}, err
	}

	return entry, nil
}

type ReceiveParams struct {
	Name          string
	Liters        decimal.Decimal
	ABV           decimal.Decimal
	SourceBatchID uint
	VesselID      uint
	ActorID       uint
}

// ReceiveFromDistillery books returned spirit as a new batch with provenance
// back to the batch that was sent out, filled into an empty vessel.
func (d *LedgerDAO) ReceiveFromDistillery(ctx context.Context, params ReceiveParams) (Batch, TransactionEntry, error) {
	var (
		batch Batch
		entry TransactionEntry
	)
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getBatch(tx, params.SourceBatchID); err != nil {
			return err
		}

		vessel, err := lockVessel(tx, params.VesselID)
		if err != nil {
			return err
		}
		if vessel.Status == "Retired" {
			return ErrVesselRetired
		}

		occupied, err := activeOccupancy(tx, vessel.ID)
		if err != nil {
			return err
		}
		if occupied != nil {
			return ErrVesselOccupied
		}
		if params.Liters.GreaterThan(vessel.CapacityLiters) {
			return ErrCapacityExceeded
		}

		now := time.Now().UTC()
		sourceID := params.SourceBatchID

		batch = Batch{
			Name:                params.Name,
			Status:              string(domain.BatchAging),
			CurrentVolumeLiters: params.Liters,
			CurrentABV:          params.ABV,
			TaxClass:            string(domain.TaxClassForABV(params.ABV)),
		}
		sources := []BatchSource{{
			SourceKind:    string(domain.SourceBatch),
			SourceBatchID: &sourceID,
			ProportionPct: decimal.NewFromInt(100),
			CreatedAt:     now,
		}}
		if err = insertBatch(tx, &batch, sources, params.ActorID); err != nil {
			return err
		}

		occupancy := Occupancy{
			VesselID:     vessel.ID,
			BatchID:      batch.ID,
			VolumeLiters: params.Liters,
			Since:        now,
		}
		if err = tx.Create(&occupancy).Error; err != nil {
			return err
		}
		if err = setVesselStatus(tx, &vessel, "Occupied"); err != nil {
			return err
		}

		entry = TransactionEntry{
			ID:          uuid.NewString(),
			BatchID:     batch.ID,
			VesselID:    &vessel.ID,
			Kind:        string(domain.EntryFill),
			DeltaLiters: params.Liters,
			ABV:         params.ABV,
			ReasonCode:  domain.ReasonDistilleryRecv,
			ActorID:     params.ActorID,
			RecordedAt:  now,
		}

		return tx.Create(&entry).Error
	})
	if err != nil {
		return Batch{}, TransactionEntry{}, err
	}

	return batch, entry, nil
}

type PackageParams struct {
	BatchID   uint
	Liters    decimal.Decimal
	UnitCount int
	Format    string
	ActorID   uint
}

// Package records a bottling or kegging run. Draining the batch to zero
// completes it and frees its vessel.
func (d *LedgerDAO) Package(ctx context.Context, params PackageParams) (PackagingRun, TransactionEntry, error) {
	var (
		run   PackagingRun
		entry TransactionEntry
	)
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch, err := lockBatch(tx, params.BatchID)
		if err != nil {
			return err
		}

		occupancy, err := adjustableOccupancy(tx, batch.ID, nil)
		if err != nil {
			return err
		}
		if occupancy == nil {
			return ErrBatchNotInVessel
		}
		if params.Liters.GreaterThan(occupancy.VolumeLiters) || params.Liters.GreaterThan(batch.CurrentVolumeLiters) {
			return ErrInsufficientVolume
		}

		old, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		vesselID := occupancy.VesselID

		remaining := occupancy.VolumeLiters.Sub(params.Liters)
		if remaining.IsZero() {
			if err = endOccupancy(tx, occupancy, now); err != nil {
				return err
			}
			if err = freeVessel(tx, vesselID); err != nil {
				return err
			}
		} else {
			if err = updateOccupancyVolume(tx, occupancy, remaining); err != nil {
				return err
			}
		}

		newVolume := batch.CurrentVolumeLiters.Sub(params.Liters)
		if err = updateBatchVolume(tx, &batch, newVolume, batch.CurrentABV); err != nil {
			return err
		}
		if newVolume.IsZero() {
			if err = tx.Model(&Batch{}).Where("id = ?", batch.ID).
				Update("status", string(domain.BatchCompleted)).Error; err != nil {
				return err
			}
			batch.Status = string(domain.BatchCompleted)
		}

		entry = TransactionEntry{
			ID:            uuid.NewString(),
			BatchID:       batch.ID,
			VesselID:      &vesselID,
			Kind:          string(domain.EntryTransfer),
			DeltaLiters:   params.Liters.Neg(),
			ABV:           batch.CurrentABV,
			ReasonCode:    domain.ReasonPackaged,
			CorrelationID: uuid.NewString(),
			ActorID:       params.ActorID,
			RecordedAt:    now,
		}
		if err = tx.Create(&entry).Error; err != nil {
			return err
		}

		run = PackagingRun{
			BatchID:      batch.ID,
			VolumeLiters: params.Liters,
			UnitCount:    params.UnitCount,
			Format:       params.Format,
			PackedAt:     now,
			ActorID:      params.ActorID,
		}
		if err = tx.Create(&run).Error; err != nil {
			return err
		}

		new, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		return appendAudit(tx, auditTableBatches, batch.ID, auditOpUpdate, old, new, params.ActorID)
	})
	if err != nil {
		return PackagingRun{}, TransactionEntry{}, err
	}

	return run, entry, nil
}

func getBatch(tx *gorm.DB, id uint) (Batch, error) {
	var batch Batch
	err := tx.First(&batch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Batch{}, ErrBatchNotFound
	}
	if err != nil {
		return Batch{}, err
	}

	return batch, nil
}
