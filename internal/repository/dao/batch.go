package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrBatchNotFound       = errors.New("batch not found")
	ErrBatchNameExists     = errors.New("batch name already exists")
	ErrPurchaseLotNotFound = errors.New("purchase lot not found")
)

// Batch's current_volume_liters is a derived projection of the transaction
// log, maintained in the same transaction as every entry. The log stays
// authoritative; reads reconcile the two and refuse to trust a row that
// disagrees with its entries.
type Batch struct {
	ID                  uint            `gorm:"primaryKey"`
	Name                string          `gorm:"unique;not null"`
	Status              string          `gorm:"not null;default:Fermentation"`
	CurrentVolumeLiters decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	CurrentABV          decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	TaxClass            string          `gorm:"size:16;not null"`
	Version             int64           `gorm:"not null;default:1"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`

	Sources []BatchSource `gorm:"foreignKey:BatchID"`
}

type BatchSource struct {
	ID            uint            `gorm:"primaryKey"`
	BatchID       uint            `gorm:"index;not null"`
	SourceKind    string          `gorm:"size:16;not null"` // "Batch" or "PurchaseLot"
	SourceBatchID *uint           `gorm:"index"`
	SourceLotID   *uint           `gorm:"index"`
	ProportionPct decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

type PurchaseLot struct {
	ID         uint            `gorm:"primaryKey"`
	Vendor     string          `gorm:"not null"`
	Variety    string          `gorm:"not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	Unit       string          `gorm:"size:8;not null"`
	ReceivedAt time.Time       `gorm:"index;not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

type BatchDAO struct {
	db *gorm.DB
}

func NewBatchDAO(db *gorm.DB) *BatchDAO {
	return &BatchDAO{
		db: db,
	}
}

func (d *BatchDAO) Insert(ctx context.Context, batch Batch, sources []BatchSource, actorID uint) (Batch, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertBatch(tx, &batch, sources, actorID)
	})
	if err != nil {
		return Batch{}, err
	}

	return batch, nil
}

// insertBatch is shared with the ledger's blend and distillery-receive paths,
// which create batches inside a larger transaction.
func insertBatch(tx *gorm.DB, batch *Batch, sources []BatchSource, actorID uint) error {
	if err := tx.Create(batch).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) &&
			pgErr.Code == pgerrcode.UniqueViolation &&
			strings.Contains(pgErr.Message, `unique constraint "uni_batches_name"`) {
			return ErrBatchNameExists
		}

		return err
	}

	for i := range sources {
		sources[i].BatchID = batch.ID
	}
	if len(sources) > 0 {
		if err := tx.Create(&sources).Error; err != nil {
			return err
		}
		batch.Sources = sources
	}

	return appendAudit(tx, auditTableBatches, batch.ID, auditOpCreate, nil, batchSnapshot(*batch), actorID)
}

func (d *BatchDAO) GetByID(ctx context.Context, id uint) (Batch, error) {
	var batch Batch
	err := d.db.WithContext(ctx).Preload("Sources").First(&batch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Batch{}, ErrBatchNotFound
	}
	if err != nil {
		return Batch{}, err
	}

	return batch, nil
}

func (d *BatchDAO) GetAll(ctx context.Context) ([]Batch, error) {
	var batches []Batch
	if err := d.db.WithContext(ctx).Preload("Sources").Order("id").Find(&batches).Error; err != nil {
		return nil, err
	}

	return batches, nil
}

func (d *BatchDAO) InsertPurchaseLot(ctx context.Context, lot PurchaseLot, actorID uint) (PurchaseLot, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lot).Error; err != nil {
			return err
		}

		snapshot := map[string]any{
			"vendor":      lot.Vendor,
			"variety":     lot.Variety,
			"amount":      lot.Amount,
			"unit":        lot.Unit,
			"received_at": lot.ReceivedAt,
		}

		return appendAudit(tx, auditTableLots, lot.ID, auditOpCreate, nil, snapshot, actorID)
	})
	if err != nil {
		return PurchaseLot{}, err
	}

	return lot, nil
}

func (d *BatchDAO) GetPurchaseLot(ctx context.Context, id uint) (PurchaseLot, error) {
	var lot PurchaseLot
	err := d.db.WithContext(ctx).First(&lot, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PurchaseLot{}, ErrPurchaseLotNotFound
	}
	if err != nil {
		return PurchaseLot{}, err
	}

	return lot, nil
}

func batchSnapshot(b Batch) map[string]any {
	sources := make([]map[string]any, len(b.Sources))
	for i, src := range b.Sources {
		sources[i] = map[string]any{
			"kind":       src.SourceKind,
			"proportion": src.ProportionPct,
		}
		if src.SourceBatchID != nil {
			sources[i]["batch_id"] = *src.SourceBatchID
		}
		if src.SourceLotID != nil {
			sources[i]["lot_id"] = *src.SourceLotID
		}
	}

	return map[string]any{
		"name":           b.Name,
		"status":         b.Status,
		"current_volume": b.CurrentVolumeLiters,
		"current_abv":    b.CurrentABV,
		"tax_class":      b.TaxClass,
		"sources":        sources,
	}
}
