package dao

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quincevale/cidery-api/internal/domain"
)

var (
	ErrVesselOccupied      = errors.New("vessel already holds a batch")
	ErrCapacityExceeded    = errors.New("vessel capacity exceeded")
	ErrInsufficientVolume  = errors.New("insufficient volume")
	ErrBatchNotInVessel    = errors.New("batch does not occupy that vessel")
	ErrAmbiguousOccupancy  = errors.New("batch occupies multiple vessels, vessel id required")
	ErrNoAdjustment        = errors.New("measured volume equals ledger volume")
	ErrAdjustmentDirection = errors.New("adjustment reason does not allow that direction")
	ErrLedgerInvariant     = errors.New("ledger volume disagrees with transaction log")
)

// Occupancy is the ledger-owned relation between vessels and batches. A row
// with a null ended_at is active; at most one active row exists per vessel.
type Occupancy struct {
	ID           uint            `gorm:"primaryKey"`
	VesselID     uint            `gorm:"index;not null"`
	BatchID      uint            `gorm:"index;not null"`
	VolumeLiters decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	Since        time.Time       `gorm:"not null"`
	EndedAt      *time.Time      `gorm:"index"`
}

// TransactionEntry rows are append-only. No update or delete path exists in
// this package; a committed entry is countered by writing a new one.
type TransactionEntry struct {
	ID            string          `gorm:"size:36;primaryKey"`
	BatchID       uint            `gorm:"index:idx_entries_batch_time,priority:1;not null"`
	VesselID      *uint           `gorm:"index"`
	Kind          string          `gorm:"size:16;not null"`
	DeltaLiters   decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	ABV           decimal.Decimal `gorm:"type:decimal(6,3)"`
	ReasonCode    string          `gorm:"size:32"`
	CorrelationID string          `gorm:"size:36;index"`
	ActorID       uint            `gorm:"not null"`
	RecordedAt    time.Time       `gorm:"index:idx_entries_batch_time,priority:2;not null"`
}

type LedgerDAO struct {
	db *gorm.DB
}

func NewLedgerDAO(db *gorm.DB) *LedgerDAO {
	return &LedgerDAO{
		db: db,
	}
}

type AssignParams struct {
	BatchID  uint
	VesselID uint
	Liters   decimal.Decimal
	ABV      decimal.Decimal
	Reason   string
	ActorID  uint
}

// AssignBatch puts a batch into an empty vessel and records the fill. The
// whole operation is one transaction: occupancy, vessel status, batch volume,
// the entry and the audit row commit together or not at all.
func (d *LedgerDAO) AssignBatch(ctx context.Context, params AssignParams) (TransactionEntry, error) {
	var entry TransactionEntry
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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

		batch, err := lockBatch(tx, params.BatchID)
		if err != nil {
			return err
		}

		if params.Liters.GreaterThan(vessel.CapacityLiters) {
			return ErrCapacityExceeded
		}

		old, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
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

		newVolume := batch.CurrentVolumeLiters.Add(params.Liters)
		newABV := weightedABV(batch.CurrentVolumeLiters, batch.CurrentABV, params.Liters, params.ABV)
		if err = updateBatchVolume(tx, &batch, newVolume, newABV); err != nil {
			return err
		}

		entry = TransactionEntry{
			ID:          uuid.NewString(),
			BatchID:     batch.ID,
			VesselID:    &vessel.ID,
			Kind:        string(domain.EntryFill),
			DeltaLiters: params.Liters,
			ABV:         params.ABV,
			ReasonCode:  params.Reason,
			ActorID:     params.ActorID,
			RecordedAt:  now,
		}
		if err = tx.Create(&entry).Error; err != nil {
			return err
		}

		new, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		return appendAudit(tx, auditTableBatches, batch.ID, auditOpUpdate, old, new, params.ActorID)
	})
	if err != nil {
		return TransactionEntry{}, err
	}

	return entry, nil
}

type FillParams struct {
	BatchID  uint
	VesselID uint
	Liters   decimal.Decimal
	ABV      decimal.Decimal
	Reason   string
	ActorID  uint
}

// Fill tops up a batch already sitting in a vessel, e.g. successive press runs
// into the same fermentation tank.
func (d *LedgerDAO) Fill(ctx context.Context, params FillParams) (TransactionEntry, error) {
	var entry TransactionEntry
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vessel, err := lockVessel(tx, params.VesselID)
		if err != nil {
			return err
		}

		occupancy, err := occupancyFor(tx, vessel.ID, params.BatchID)
		if err != nil {
			return err
		}
		if occupancy == nil {
			return ErrBatchNotInVessel
		}

		batch, err := lockBatch(tx, params.BatchID)
		if err != nil {
			return err
		}

		if occupancy.VolumeLiters.Add(params.Liters).GreaterThan(vessel.CapacityLiters) {
			return ErrCapacityExceeded
		}

		old, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err = updateOccupancyVolume(tx, occupancy, occupancy.VolumeLiters.Add(params.Liters)); err != nil {
			return err
		}

		newVolume := batch.CurrentVolumeLiters.Add(params.Liters)
		newABV := weightedABV(batch.CurrentVolumeLiters, batch.CurrentABV, params.Liters, params.ABV)
		if err = updateBatchVolume(tx, &batch, newVolume, newABV); err != nil {
			return err
		}

		entry = TransactionEntry{
			ID:          uuid.NewString(),
			BatchID:     batch.ID,
			VesselID:    &vessel.ID,
			Kind:        string(domain.EntryFill),
			DeltaLiters: params.Liters,
			ABV:         params.ABV,
			ReasonCode:  params.Reason,
			ActorID:     params.ActorID,
			RecordedAt:  now,
		}
		if err = tx.Create(&entry).Error; err != nil {
			return err
		}

		new, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		return appendAudit(tx, auditTableBatches, batch.ID, auditOpUpdate, old, new, params.ActorID)
	})
	if err != nil {
		return TransactionEntry{}, err
	}

	return entry, nil
}

type TransferParams struct {
	BatchID      uint
	FromVesselID uint
	ToVesselID   uint
	Liters       decimal.Decimal
	Reason       string
	ActorID      uint
}

// TransferVolume moves part or all of a batch between vessels, emitting paired
// entries whose deltas sum to zero. Vessels are locked in id order so two
// opposing transfers cannot deadlock.
func (d *LedgerDAO) TransferVolume(ctx context.Context, params TransferParams) ([]TransactionEntry, error) {
	var entries []TransactionEntry
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, second := params.FromVesselID, params.ToVesselID
		if second < first {
			first, second = second, first
		}
		if _, err := lockVessel(tx, first); err != nil {
			return err
		}
		if _, err := lockVessel(tx, second); err != nil {
			return err
		}

		from, err := getVessel(tx, params.FromVesselID)
		if err != nil {
			return err
		}
		to, err := getVessel(tx, params.ToVesselID)
		if err != nil {
			return err
		}
		if to.Status == "Retired" {
			return ErrVesselRetired
		}

		batch, err := lockBatch(tx, params.BatchID)
		if err != nil {
			return err
		}

		source, err := occupancyFor(tx, from.ID, batch.ID)
		if err != nil {
			return err
		}
		if source == nil {
			return ErrBatchNotInVessel
		}
		if params.Liters.GreaterThan(source.VolumeLiters) {
			return ErrInsufficientVolume
		}

		dest, err := activeOccupancy(tx, to.ID)
		if err != nil {
			return err
		}
		if dest != nil && dest.BatchID != batch.ID {
			return ErrVesselOccupied
		}

		destVolume := params.Liters
		if dest != nil {
			destVolume = dest.VolumeLiters.Add(params.Liters)
		}
		if destVolume.GreaterThan(to.CapacityLiters) {
			return ErrCapacityExceeded
		}

		old, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		remaining := source.VolumeLiters.Sub(params.Liters)
		if remaining.IsZero() {
			if err = endOccupancy(tx, source, now); err != nil {
				return err
			}
			if err = setVesselStatus(tx, &from, "Available"); err != nil {
				return err
			}
		} else {
			if err = updateOccupancyVolume(tx, source, remaining); err != nil {
				return err
			}
		}

		if dest != nil {
			if err = updateOccupancyVolume(tx, dest, destVolume); err != nil {
				return err
			}
		} else {
			occupancy := Occupancy{
				VesselID:     to.ID,
				BatchID:      batch.ID,
				VolumeLiters: destVolume,
				Since:        now,
			}
			if err = tx.Create(&occupancy).Error; err != nil {
				return err
			}
			if err = setVesselStatus(tx, &to, "Occupied"); err != nil {
				return err
			}
		}

		correlation := uuid.NewString()
		entries = []TransactionEntry{
			{
				ID:            uuid.NewString(),
				BatchID:       batch.ID,
				VesselID:      &from.ID,
				Kind:          string(domain.EntryTransfer),
				DeltaLiters:   params.Liters.Neg(),
				ABV:           batch.CurrentABV,
				ReasonCode:    params.Reason,
				CorrelationID: correlation,
				ActorID:       params.ActorID,
				RecordedAt:    now,
			},
			{
				ID:            uuid.NewString(),
				BatchID:       batch.ID,
				VesselID:      &to.ID,
				Kind:          string(domain.EntryTransfer),
				DeltaLiters:   params.Liters,
				ABV:           batch.CurrentABV,
				ReasonCode:    params.Reason,
				CorrelationID: correlation,
				ActorID:       params.ActorID,
				RecordedAt:    now,
			},
		}
		if err = tx.Create(&entries).Error; err != nil {
			return err
		}

		// The batch's total volume is unchanged, only its location moved.
		if err = updateBatchVolume(tx, &batch, batch.CurrentVolumeLiters, batch.CurrentABV); err != nil {
			return err
		}

		new, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		return appendAudit(tx, auditTableBatches, batch.ID, auditOpUpdate, old, new, params.ActorID)
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

type AdjustParams struct {
	BatchID        uint
	VesselID       *uint
	MeasuredLiters decimal.Decimal
	Reason         string
	ActorID        uint
}

var largeAdjustmentRatio = decimal.RequireFromString("0.1")

// RecordAdjustment reconciles a physically measured volume against the
// ledger's computed volume. The returned flag reports a large adjustment
// (above 10% of current volume), which commits but deserves a second look.
func (d *LedgerDAO) RecordAdjustment(ctx context.Context, params AdjustParams) (TransactionEntry, bool, error) {
	var (
		entry TransactionEntry
		large bool
	)
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch, err := lockBatch(tx, params.BatchID)
		if err != nil {
			return err
		}

		computed, err := summedDeltas(tx, batch.ID)
		if err != nil {
			return err
		}
		if !computed.Equal(batch.CurrentVolumeLiters) {
			return ErrLedgerInvariant
		}

		delta := params.MeasuredLiters.Sub(computed)
		if delta.IsZero() {
			return ErrNoAdjustment
		}
		if dir, ok := domain.AdjustmentDirections[params.Reason]; ok && dir*delta.Sign() < 0 {
			return ErrAdjustmentDirection
		}

		occupancy, err := adjustableOccupancy(tx, batch.ID, params.VesselID)
		if err != nil {
			return err
		}

		old, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		var vesselID *uint
		if occupancy != nil {
			newOcc := occupancy.VolumeLiters.Add(delta)
			if newOcc.IsNegative() {
				return ErrInsufficientVolume
			}
			if newOcc.IsZero() {
				if err = endOccupancy(tx, occupancy, now); err != nil {
					return err
				}
				if err = freeVessel(tx, occupancy.VesselID); err != nil {
					return err
				}
			} else {
				if err = updateOccupancyVolume(tx, occupancy, newOcc); err != nil {
					return err
				}
			}
			vesselID = &occupancy.VesselID
		}

		if err = updateBatchVolume(tx, &batch, params.MeasuredLiters, batch.CurrentABV); err != nil {
			return err
		}

		entry = TransactionEntry{
			ID:          uuid.NewString(),
			BatchID:     batch.ID,
			VesselID:    vesselID,
			Kind:        string(domain.EntryAdjustment),
			DeltaLiters: delta,
			ABV:         batch.CurrentABV,
			ReasonCode:  params.Reason,
			ActorID:     params.ActorID,
			RecordedAt:  now,
		}
		if err = tx.Create(&entry).Error; err != nil {
			return err
		}

		if computed.IsPositive() {
			ratio := delta.Abs().DivRound(computed, 6)
			large = ratio.GreaterThan(largeAdjustmentRatio)
		}

		new, err := ledgerBatchSnapshot(tx, batch)
		if err != nil {
			return err
		}

		return appendAudit(tx, auditTableBatches, batch.ID, auditOpUpdate, old, new, params.ActorID)
	})
	if err != nil {
		return TransactionEntry{}, false, err
	}

	return entry, large, nil
}

// ComputedVolume sums a batch's entry deltas, the authoritative volume.
func (d *LedgerDAO) ComputedVolume(ctx context.Context, batchID uint) (decimal.Decimal, error) {
	return summedDeltas(d.db.WithContext(ctx), batchID)
}

// CurrentVolume returns the batch's volume after reconciling the stored
// projection against the transaction log. A mismatch is a data-integrity
// failure, never silently healed here.
func (d *LedgerDAO) CurrentVolume(ctx context.Context, batchID uint) (decimal.Decimal, error) {
	var batch Batch
	err := d.db.WithContext(ctx).First(&batch, batchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, ErrBatchNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}

	computed, err := summedDeltas(d.db.WithContext(ctx), batchID)
	if err != nil {
		return decimal.Zero, err
	}
	if !computed.Equal(batch.CurrentVolumeLiters) {
		return decimal.Zero, ErrLedgerInvariant
	}

	return computed, nil
}

// Occupant returns the batch currently in a vessel, or nil for an empty one.
func (d *LedgerDAO) Occupant(ctx context.Context, vesselID uint) (*uint, error) {
	if _, err := (&VesselDAO{db: d.db}).GetByID(ctx, vesselID); err != nil {
		return nil, err
	}

	occupancy, err := activeOccupancy(d.db.WithContext(ctx), vesselID)
	if err != nil {
		return nil, err
	}
	if occupancy == nil {
		return nil, nil
	}

	return &occupancy.BatchID, nil
}

func (d *LedgerDAO) BatchOccupancies(ctx context.Context, batchID uint) ([]Occupancy, error) {
	var occupancies []Occupancy
	err := d.db.WithContext(ctx).
		Where("batch_id = ? AND ended_at IS NULL", batchID).
		Order("vessel_id").
		Find(&occupancies).Error
	if err != nil {
		return nil, err
	}

	return occupancies, nil
}

// EntriesForBatch pages through a batch's entries in timestamp order. Callers
// restart from any offset; entries never change under them.
func (d *LedgerDAO) EntriesForBatch(ctx context.Context, batchID uint, limit, offset int) ([]TransactionEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []TransactionEntry
	err := d.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("recorded_at, id").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// --- shared transaction helpers ---

func lockVessel(tx *gorm.DB, id uint) (Vessel, error) {
	var vessel Vessel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).First(&vessel, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Vessel{}, ErrVesselNotFound
	}
	if isLockNotAvailable(err) {
		return Vessel{}, ErrConcurrentModification
	}
	if err != nil {
		return Vessel{}, err
	}

	return vessel, nil
}

func getVessel(tx *gorm.DB, id uint) (Vessel, error) {
	var vessel Vessel
	err := tx.First(&vessel, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Vessel{}, ErrVesselNotFound
	}
	if err != nil {
		return Vessel{}, err
	}

	return vessel, nil
}

func lockBatch(tx *gorm.DB, id uint) (Batch, error) {
	var batch Batch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).First(&batch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Batch{}, ErrBatchNotFound
	}
	if isLockNotAvailable(err) {
		return Batch{}, ErrConcurrentModification
	}
	if err != nil {
		return Batch{}, err
	}

	return batch, nil
}

func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.LockNotAvailable
}

func activeOccupancy(tx *gorm.DB, vesselID uint) (*Occupancy, error) {
	var occupancy Occupancy
	err := tx.Where("vessel_id = ? AND ended_at IS NULL", vesselID).First(&occupancy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &occupancy, nil
}

func occupancyFor(tx *gorm.DB, vesselID, batchID uint) (*Occupancy, error) {
	occupancy, err := activeOccupancy(tx, vesselID)
	if err != nil {
		return nil, err
	}
	if occupancy == nil || occupancy.BatchID != batchID {
		return nil, nil
	}

	return occupancy, nil
}

// adjustableOccupancy resolves which occupancy an adjustment applies to: the
// explicit vessel if given, the batch's single occupancy otherwise, none for
// an unassigned batch.
func adjustableOccupancy(tx *gorm.DB, batchID uint, vesselID *uint) (*Occupancy, error) {
	if vesselID != nil {
		occupancy, err := occupancyFor(tx, *vesselID, batchID)
		if err != nil {
			return nil, err
		}
		if occupancy == nil {
			return nil, ErrBatchNotInVessel
		}
		return occupancy, nil
	}

	var occupancies []Occupancy
	err := tx.Where("batch_id = ? AND ended_at IS NULL", batchID).Find(&occupancies).Error
	if err != nil {
		return nil, err
	}

	switch len(occupancies) {
	case 0:
		return nil, nil
	case 1:
		return &occupancies[0], nil
	default:
		return nil, ErrAmbiguousOccupancy
	}
}

func updateOccupancyVolume(tx *gorm.DB, occupancy *Occupancy, volume decimal.Decimal) error {
	occupancy.VolumeLiters = volume
	return tx.Model(&Occupancy{}).Where("id = ?", occupancy.ID).
		Update("volume_liters", volume).Error
}

func endOccupancy(tx *gorm.DB, occupancy *Occupancy, at time.Time) error {
	occupancy.EndedAt = &at
	return tx.Model(&Occupancy{}).Where("id = ?", occupancy.ID).
		Update("ended_at", at).Error
}

func setVesselStatus(tx *gorm.DB, vessel *Vessel, status string) error {
	if vessel.Status == status {
		return nil
	}

	err := tx.Model(&Vessel{}).Where("id = ?", vessel.ID).
		Updates(map[string]any{"status": status, "version": vessel.Version + 1}).Error
	if err != nil {
		return err
	}

	vessel.Status = status
	vessel.Version++

	return nil
}

func freeVessel(tx *gorm.DB, vesselID uint) error {
	vessel, err := getVessel(tx, vesselID)
	if err != nil {
		return err
	}

	return setVesselStatus(tx, &vessel, "Available")
}

func updateBatchVolume(tx *gorm.DB, batch *Batch, volume, abv decimal.Decimal) error {
	err := tx.Model(&Batch{}).Where("id = ?", batch.ID).
		Updates(map[string]any{
			"current_volume_liters": volume,
			"current_abv":           abv,
			"version":               batch.Version + 1,
		}).Error
	if err != nil {
		return err
	}

	batch.CurrentVolumeLiters = volume
	batch.CurrentABV = abv
	batch.Version++

	return nil
}

// weightedABV folds a new stream into a batch's alcohol content. Mixing is
// volume-additive, the same approximation documented on domain.Blend.
func weightedABV(haveVolume, haveABV, addVolume, addABV decimal.Decimal) decimal.Decimal {
	total := haveVolume.Add(addVolume)
	if total.IsZero() {
		return decimal.Zero
	}

	alcohol := haveVolume.Mul(haveABV).Add(addVolume.Mul(addABV))

	return alcohol.DivRound(total, 3)
}

func summedDeltas(tx *gorm.DB, batchID uint) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := tx.Model(&TransactionEntry{}).
		Select("COALESCE(SUM(delta_liters), 0) AS total").
		Where("batch_id = ?", batchID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}

	return row.Total, nil
}

// ledgerBatchSnapshot is the audit view of a batch: its row fields plus where
// its volume currently sits, keyed by vessel id.
func ledgerBatchSnapshot(tx *gorm.DB, batch Batch) (map[string]any, error) {
	snapshot := batchSnapshot(batch)

	var occupancies []Occupancy
	err := tx.Where("batch_id = ? AND ended_at IS NULL", batch.ID).
		Order("vessel_id").
		Find(&occupancies).Error
	if err != nil {
		return nil, err
	}

	vessels := make(map[string]any, len(occupancies))
	for _, occupancy := range occupancies {
		vessels[strconv.FormatUint(uint64(occupancy.VesselID), 10)] = occupancy.VolumeLiters
	}
	snapshot["vessels"] = vessels

	return snapshot, nil
}
