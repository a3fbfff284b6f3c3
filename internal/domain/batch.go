package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BatchStatus string

const (
	BatchFermentation BatchStatus = "Fermentation"
	BatchAging        BatchStatus = "Aging"
	BatchConditioning BatchStatus = "Conditioning"
	BatchCompleted    BatchStatus = "Completed"
	BatchCancelled    BatchStatus = "Cancelled"
)

type SourceKind string

const (
	SourceBatch       SourceKind = "Batch"
	SourcePurchaseLot SourceKind = "PurchaseLot"
)

// SourceRef records one contributor to a batch's composition: a prior batch or
// a purchase lot, and the proportion of the batch it accounts for.
type SourceRef struct {
	Kind       SourceKind      `json:"kind"`
	BatchID    *uint           `json:"batch_id,omitempty"`
	LotID      *uint           `json:"lot_id,omitempty"`
	Proportion decimal.Decimal `json:"proportion"` // of the destination batch, in percent
}

// Batch is a tracked quantity of liquid sharing provenance. CurrentVolume is a
// derived value: the sum of the batch's transaction entries is authoritative
// and the stored volume is reconciled against it on read.
type Batch struct {
	ID            uint
	Name          string
	Status        BatchStatus
	CurrentVolume Quantity
	TaxClass      TaxClass
	Sources       []SourceRef
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TaxClass string

const (
	TaxClassCider   TaxClass = "cider"
	TaxClassWine    TaxClass = "wine"
	TaxClassSpirits TaxClass = "spirits"
)

var (
	ciderABVCeiling = decimal.RequireFromString("8.5")
	wineABVCeiling  = decimal.NewFromInt(24)
)

// TaxClassForABV buckets a batch into its excise tax class by alcohol content.
// The bands follow TTB practice: hard cider up to 8.5%, wine up to 24%,
// spirits above.
func TaxClassForABV(abv decimal.Decimal) TaxClass {
	switch {
	case abv.LessThanOrEqual(ciderABVCeiling):
		return TaxClassCider
	case abv.LessThanOrEqual(wineABVCeiling):
		return TaxClassWine
	default:
		return TaxClassSpirits
	}
}

// PurchaseLot is a provenance root: fruit or juice bought from a vendor, which
// pressed batches reference through their composition sources.
type PurchaseLot struct {
	ID         uint
	Vendor     string
	Variety    string
	Quantity   Quantity
	ReceivedAt time.Time
	CreatedAt  time.Time
}

// PackagingRun records a bottling or kegging of part of a batch.
type PackagingRun struct {
	ID        uint
	BatchID   uint
	Volume    Quantity
	UnitCount int
	Format    string // "750mL bottle", "19.5L keg", ...
	PackedAt  time.Time
	ActorID   uint
}
