package dao

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quincevale/cidery-api/internal/domain"
)

type BlendSourceParams struct {
	BatchID uint
	Liters  decimal.Decimal
}

type BlendParams struct {
	Sources             []BlendSourceParams
	DestinationVesselID uint
	DestinationName     string
	ActorID             uint
}

type BlendOutcome struct {
	Batch         Batch
	Entries       []TransactionEntry
	TotalLiters   decimal.Decimal
	WeightedABV   decimal.Decimal
	CorrelationID string
}

// ApplyBlend combines N source batches into one new destination batch. The
// operation is all-or-nothing: every validation runs against locked rows, and
// a failure on any source rolls back every deduction. Source batches are
// locked in id order to keep concurrent blends deadlock-free.
func (d *LedgerDAO) ApplyBlend(ctx context.Context, params BlendParams) (BlendOutcome, error) {
	var outcome BlendOutcome
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vessel, err := lockVessel(tx, params.DestinationVesselID)
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

		ordered := make([]BlendSourceParams, len(params.Sources))
		copy(ordered, params.Sources)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].BatchID < ordered[j].BatchID })

		type lockedSource struct {
			params    BlendSourceParams
			batch     Batch
			occupancy *Occupancy
			snapshot  map[string]any
		}

		locked := make([]lockedSource, 0, len(ordered))
		blendInputs := make([]domain.BlendSource, 0, len(ordered))
		for _, src := range ordered {
			batch, err := lockBatch(tx, src.BatchID)
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
			if src.Liters.GreaterThan(occupancy.VolumeLiters) || src.Liters.GreaterThan(batch.CurrentVolumeLiters) {
				return ErrInsufficientVolume
			}

			snapshot, err := ledgerBatchSnapshot(tx, batch)
			if err != nil {
				return err
			}

			locked = append(locked, lockedSource{params: src, batch: batch, occupancy: occupancy, snapshot: snapshot})
			blendInputs = append(blendInputs, domain.BlendSource{
				BatchID: batch.ID,
				Volume:  src.Liters,
				ABV:     batch.CurrentABV,
			})
		}

		total, weighted, err := domain.Blend(blendInputs)
		if err != nil {
			return err
		}
		if total.GreaterThan(vessel.CapacityLiters) {
			return ErrCapacityExceeded
		}

		now := time.Now().UTC()
		correlation := uuid.NewString()

		refs := domain.Proportions(blendInputs, total)
		sources := make([]BatchSource, len(refs))
		for i, ref := range refs {
			sources[i] = BatchSource{
				SourceKind:    string(ref.Kind),
				SourceBatchID: ref.BatchID,
				ProportionPct: ref.Proportion,
				CreatedAt:     now,
			}
		}

		destination := Batch{
			Name:                params.DestinationName,
			Status:              string(domain.BatchConditioning),
			CurrentVolumeLiters: total,
			CurrentABV:          weighted,
			TaxClass:            string(domain.TaxClassForABV(weighted)),
		}
		if err = insertBatch(tx, &destination, sources, params.ActorID); err != nil {
			return err
		}

		entries := make([]TransactionEntry, 0, len(locked)+1)
		for i := range locked {
			src := &locked[i]

			remaining := src.occupancy.VolumeLiters.Sub(src.params.Liters)
			if remaining.IsZero() {
				if err = endOccupancy(tx, src.occupancy, now); err != nil {
					return err
				}
				if err = freeVessel(tx, src.occupancy.VesselID); err != nil {
					return err
				}
			} else {
				if err = updateOccupancyVolume(tx, src.occupancy, remaining); err != nil {
					return err
				}
			}

			newVolume := src.batch.CurrentVolumeLiters.Sub(src.params.Liters)
			if err = updateBatchVolume(tx, &src.batch, newVolume, src.batch.CurrentABV); err != nil {
				return err
			}

			vesselID := src.occupancy.VesselID
			entries = append(entries, TransactionEntry{
				ID:            uuid.NewString(),
				BatchID:       src.batch.ID,
				VesselID:      &vesselID,
				Kind:          string(domain.EntryBlend),
				DeltaLiters:   src.params.Liters.Neg(),
				ABV:           src.batch.CurrentABV,
				ReasonCode:    domain.ReasonBlendComponent,
				CorrelationID: correlation,
				ActorID:       params.ActorID,
				RecordedAt:    now,
			})

			newSnapshot, err := ledgerBatchSnapshot(tx, src.batch)
			if err != nil {
				return err
			}
			if err = appendAudit(tx, auditTableBatches, src.batch.ID, auditOpUpdate, src.snapshot, newSnapshot, params.ActorID); err != nil {
				return err
			}
		}

		occupancy := Occupancy{
			VesselID:     vessel.ID,
			BatchID:      destination.ID,
			VolumeLiters: total,
			Since:        now,
		}
		if err = tx.Create(&occupancy).Error; err != nil {
			return err
		}
		if err = setVesselStatus(tx, &vessel, "Occupied"); err != nil {
			return err
		}

		entries = append(entries, TransactionEntry{
			ID:            uuid.NewString(),
			BatchID:       destination.ID,
			VesselID:      &vessel.ID,
			Kind:          string(domain.EntryBlend),
			DeltaLiters:   total,
			ABV:           weighted,
			ReasonCode:    domain.ReasonBlendResult,
			CorrelationID: correlation,
			ActorID:       params.ActorID,
			RecordedAt:    now,
		})
		if err = tx.Create(&entries).Error; err != nil {
			return err
		}

		outcome = BlendOutcome{
			Batch:         destination,
			Entries:       entries,
			TotalLiters:   total,
			WeightedABV:   weighted,
			CorrelationID: correlation,
		}

		return nil
	})
	if err != nil {
		return BlendOutcome{}, err
	}

	return outcome, nil
}
