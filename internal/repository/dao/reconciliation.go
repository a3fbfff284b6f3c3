package dao

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReconciliationSnapshot struct {
	ID              uint            `gorm:"primaryKey"`
	PeriodStart     time.Time       `gorm:"index;not null"`
	PeriodEnd       time.Time       `gorm:"index;not null"`
	TaxClass        string          `gorm:"size:16;index;not null"`
	ComputedLiters  decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	ReportedLiters  decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	ProofGallons    decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	DiscrepancyPct  decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	WithinTolerance bool            `gorm:"not null"`
	CreatedAt       time.Time
}

func (ReconciliationSnapshot) TableName() string {
	return "reconciliation_snapshots"
}

// ClassVolume is one batch's ledger position as of a cutoff: the sum of its
// entry deltas up to that instant plus the ABV needed for proof gallon math.
type ClassVolume struct {
	BatchID  uint
	TaxClass string
	Liters   decimal.Decimal
	ABV      decimal.Decimal
}

type ReconciliationDAO struct {
	db *gorm.DB
}

func NewReconciliationDAO(db *gorm.DB) *ReconciliationDAO {
	return &ReconciliationDAO{db: db}
}

// ClassVolumes computes per-batch ledger balances as of the cutoff, grouped
// under each batch's tax class. The transaction log is authoritative; stored
// batch volumes are not consulted.
func (d *ReconciliationDAO) ClassVolumes(ctx context.Context, asOf time.Time) ([]ClassVolume, error) {
	var rows []ClassVolume
	err := d.db.WithContext(ctx).
		Model(&TransactionEntry{}).
		Select("transaction_entries.batch_id AS batch_id, batches.tax_class AS tax_class, "+
			"COALESCE(SUM(transaction_entries.delta_liters), 0) AS liters, batches.current_abv AS abv").
		Joins("JOIN batches ON batches.id = transaction_entries.batch_id").
		Where("transaction_entries.recorded_at <= ?", asOf).
		Group("transaction_entries.batch_id, batches.tax_class, batches.current_abv").
		Order("transaction_entries.batch_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (d *ReconciliationDAO) Insert(ctx context.Context, snapshot *ReconciliationSnapshot) error {
	return d.db.WithContext(ctx).Create(snapshot).Error
}

func (d *ReconciliationDAO) GetAll(ctx context.Context, taxClass string) ([]ReconciliationSnapshot, error) {
	query := d.db.WithContext(ctx).Order("period_end DESC, tax_class")
	if taxClass != "" {
		query = query.Where("tax_class = ?", taxClass)
	}

	var snapshots []ReconciliationSnapshot
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}
