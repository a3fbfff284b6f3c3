package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var (
	errNonPositiveAmount = errors.New("amount must be positive")
	errNotAVolumeUnit    = errors.New("unit must be a volume unit")
	errSameVessel        = errors.New("source and destination vessel must differ")
)

type CreateVesselRequest struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Capacity decimal.Decimal `json:"capacity"`
	Unit     string          `json:"unit"`
}

func (req *CreateVesselRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Kind, validation.Required, validation.In("tank", "barrel", "tote")),
		validation.Field(&req.Unit, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.Capacity.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}

type UpdateVesselStatusRequest struct {
	Status string `json:"status"`
}

func (req *UpdateVesselStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required,
			validation.In("Available", "Cleaning", "Maintenance", "Retired")),
	)
}
