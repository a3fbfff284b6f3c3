package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var errNoBlendSources = errors.New("a blend needs at least one source")

type BlendSourceRequest struct {
	BatchID uint            `json:"batch_id"`
	Amount  decimal.Decimal `json:"amount"`
	Unit    string          `json:"unit"`
}

type BlendPreviewSourceRequest struct {
	BatchID uint            `json:"batch_id"`
	Amount  decimal.Decimal `json:"amount"`
	Unit    string          `json:"unit"`
	ABV     decimal.Decimal `json:"abv"`
}

// BlendPreviewRequest carries the ABV per source because a preview is pure
// math over caller-supplied values; the committed blend reads ABV from the
// stored batch rows instead.
type BlendPreviewRequest struct {
	Sources []BlendPreviewSourceRequest `json:"sources"`
}

func (req *BlendPreviewRequest) Validate() error {
	if len(req.Sources) == 0 {
		return errNoBlendSources
	}
	for _, src := range req.Sources {
		if src.Unit == "" {
			return errors.New("every blend source needs a unit")
		}
		if !src.Amount.IsPositive() {
			return errNonPositiveAmount
		}
	}

	return nil
}

type BlendRequest struct {
	Sources             []BlendSourceRequest `json:"sources"`
	DestinationVesselID uint                 `json:"destination_vessel_id"`
	DestinationName     string               `json:"destination_name"`
}

func (req *BlendRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.DestinationVesselID, validation.Required),
		validation.Field(&req.DestinationName, validation.Required, validation.Length(1, 100)),
	)
	if err != nil {
		return err
	}

	if len(req.Sources) == 0 {
		return errNoBlendSources
	}
	for _, src := range req.Sources {
		if src.BatchID == 0 {
			return errors.New("every blend source needs a batch_id")
		}
		if src.Unit == "" {
			return errors.New("every blend source needs a unit")
		}
		if !src.Amount.IsPositive() {
			return errNonPositiveAmount
		}
	}

	return nil
}
