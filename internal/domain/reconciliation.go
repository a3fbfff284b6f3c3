package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationSnapshot captures one tax class for one reporting period:
// the volume computed from the ledger against the externally reported closing
// balance. Snapshots only flag discrepancies; any correction has to flow back
// through an audited adjustment, never through the snapshot itself.
type ReconciliationSnapshot struct {
	ID              uint
	PeriodStart     time.Time
	PeriodEnd       time.Time
	TaxClass        TaxClass
	ComputedLiters  decimal.Decimal
	ReportedLiters  decimal.Decimal
	ProofGallons    decimal.Decimal
	DiscrepancyPct  decimal.Decimal
	WithinTolerance bool
	CreatedAt       time.Time
}

// Warning is a non-fatal signal returned alongside a successful result. The
// operation still committed; the caller is told the event deserves attention.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	WarnLargeAdjustment           = "large_adjustment"
	WarnReconciliationDiscrepancy = "reconciliation_discrepancy"
)
