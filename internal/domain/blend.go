package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/unit"
)

var ErrEmptyBlend = errors.New("blend has no volume")

// BlendSource is one input stream to a blend: a batch, how much of it to take,
// and its alcohol content.
type BlendSource struct {
	BatchID uint
	Volume  decimal.Decimal // liters
	ABV     decimal.Decimal
}

// BlendOperation is a transient computation request; it is not persisted as its
// own entity, only its resulting entries and batch are.
type BlendOperation struct {
	Sources             []BlendSource
	DestinationVesselID uint
	DestinationName     string
}

type BlendResult struct {
	DestinationBatchID uint
	TotalLiters        decimal.Decimal
	WeightedABV        decimal.Decimal
	Sources            []SourceRef
	CorrelationID      string
}

// Blend computes the combined volume and volume-weighted average ABV of the
// given streams. Mixing is treated as volume-additive: no contraction or
// expansion correction is applied. That is an approximation that holds well for
// juice and cider and only approximately for high-proof spirit additions.
func Blend(sources []BlendSource) (total, weightedABV decimal.Decimal, err error) {
	total = decimal.Zero
	alcohol := decimal.Zero

	for _, src := range sources {
		if src.Volume.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %v", ErrNegativeAmount, src.Volume)
		}
		if src.ABV.IsNegative() || src.ABV.GreaterThan(hundred) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidABV, src.ABV)
		}
		total = total.Add(src.Volume)
		alcohol = alcohol.Add(src.Volume.Mul(src.ABV))
	}

	if total.IsZero() {
		return decimal.Zero, decimal.Zero, ErrEmptyBlend
	}

	weightedABV = alcohol.DivRound(total, unit.VolumePlaces)

	return total.Round(unit.VolumePlaces), weightedABV, nil
}

// Proportions derives composition source refs for a blend's destination batch,
// one per input, with each input's share of the total in percent.
func Proportions(sources []BlendSource, total decimal.Decimal) []SourceRef {
	refs := make([]SourceRef, len(sources))
	for i, src := range sources {
		batchID := src.BatchID
		refs[i] = SourceRef{
			Kind:       SourceBatch,
			BatchID:    &batchID,
			Proportion: src.Volume.Mul(hundred).DivRound(total, unit.VolumePlaces),
		}
	}

	return refs
}
