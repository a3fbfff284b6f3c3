package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidEntry = errors.New("invalid transaction entry")

type EntryKind string

const (
	EntryFill       EntryKind = "Fill"
	EntryTransfer   EntryKind = "Transfer"
	EntryAdjustment EntryKind = "Adjustment"
	EntryBlend      EntryKind = "Blend"
	EntrySplit      EntryKind = "Split"
	EntryLoss       EntryKind = "Loss"
)

// Reason codes carried on transaction entries. Adjustments additionally
// declare a direction so a gain can never be mislabeled as a loss.
const (
	ReasonPressRun         = "press_run"
	ReasonRacking          = "racking"
	ReasonDistillerySend   = "distillery_send"
	ReasonDistilleryRecv   = "distillery_receive"
	ReasonPackaged         = "packaged"
	ReasonBlendComponent   = "blend_component"
	ReasonBlendResult      = "blend_result"
	ReasonEvaporationLoss  = "evaporation_loss"
	ReasonSpillage         = "spillage"
	ReasonCorrectionUp     = "correction_up"
	ReasonCorrectionDown   = "correction_down"
	ReasonMeterCalibration = "meter_calibration"
)

// AdjustmentDirections constrains which way each adjustment reason may move
// the ledger. Reasons absent from the map may move either way.
var AdjustmentDirections = map[string]int{
	ReasonEvaporationLoss: -1,
	ReasonSpillage:        -1,
	ReasonCorrectionUp:    +1,
	ReasonCorrectionDown:  -1,
}

// TransactionEntry is one append-only ledger record. Entries are never updated
// or deleted; a committed entry can only be countered by a new one. DeltaLiters
// is signed; the sum of a batch's deltas is its current volume.
type TransactionEntry struct {
	ID            string // uuid
	BatchID       uint
	VesselID      *uint
	Kind          EntryKind
	DeltaLiters   decimal.Decimal
	ABV           decimal.Decimal
	ReasonCode    string
	CorrelationID string // pairs the legs of a transfer or blend
	ActorID       uint
	RecordedAt    time.Time
}

// Validate enforces the per-kind shape of an entry. The switch is exhaustive
// over EntryKind: a new kind does not compile into the ledger until its
// constraints are spelled out here.
func (e TransactionEntry) Validate() error {
	if e.BatchID == 0 {
		return fmt.Errorf("%w: missing batch", ErrInvalidEntry)
	}
	if e.DeltaLiters.IsZero() {
		return fmt.Errorf("%w: zero delta", ErrInvalidEntry)
	}

	switch e.Kind {
	case EntryFill:
		if e.DeltaLiters.IsNegative() {
			return fmt.Errorf("%w: fill delta must be positive", ErrInvalidEntry)
		}
		if e.VesselID == nil {
			return fmt.Errorf("%w: fill requires a vessel", ErrInvalidEntry)
		}
	case EntryTransfer:
		if e.CorrelationID == "" {
			return fmt.Errorf("%w: transfer requires a correlation id", ErrInvalidEntry)
		}
	case EntryAdjustment:
		if e.ReasonCode == "" {
			return fmt.Errorf("%w: adjustment requires a reason code", ErrInvalidEntry)
		}
		if dir, ok := AdjustmentDirections[e.ReasonCode]; ok && dir*e.DeltaLiters.Sign() < 0 {
			return fmt.Errorf("%w: reason %q cannot move volume in that direction", ErrInvalidEntry, e.ReasonCode)
		}
	case EntryBlend:
		if e.CorrelationID == "" {
			return fmt.Errorf("%w: blend requires a correlation id", ErrInvalidEntry)
		}
	case EntrySplit:
		if e.CorrelationID == "" {
			return fmt.Errorf("%w: split requires a correlation id", ErrInvalidEntry)
		}
	case EntryLoss:
		if !e.DeltaLiters.IsNegative() {
			return fmt.Errorf("%w: loss delta must be negative", ErrInvalidEntry)
		}
		if e.ReasonCode == "" {
			return fmt.Errorf("%w: loss requires a reason code", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, string(e.Kind))
	}

	return nil
}
