package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/domain"
)

type AssignRequest struct {
	BatchID  uint            `json:"batch_id"`
	VesselID uint            `json:"vessel_id"`
	Amount   decimal.Decimal `json:"amount"`
	Unit     string          `json:"unit"`
	ABV      decimal.Decimal `json:"abv"`
	Reason   string          `json:"reason"`
}

func (req *AssignRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.BatchID, validation.Required),
		validation.Field(&req.VesselID, validation.Required),
		validation.Field(&req.Unit, validation.Required),
		validation.Field(&req.Reason, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}

type FillRequest struct {
	BatchID  uint            `json:"batch_id"`
	VesselID uint            `json:"vessel_id"`
	Amount   decimal.Decimal `json:"amount"`
	Unit     string          `json:"unit"`
	ABV      decimal.Decimal `json:"abv"`
	Reason   string          `json:"reason"`
}

func (req *FillRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.BatchID, validation.Required),
		validation.Field(&req.VesselID, validation.Required),
		validation.Field(&req.Unit, validation.Required),
		validation.Field(&req.Reason, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}

type TransferRequest struct {
	BatchID      uint            `json:"batch_id"`
	FromVesselID uint            `json:"from_vessel_id"`
	ToVesselID   uint            `json:"to_vessel_id"`
	Amount       decimal.Decimal `json:"amount"`
	Unit         string          `json:"unit"`
	Reason       string          `json:"reason"`
}

func (req *TransferRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.BatchID, validation.Required),
		validation.Field(&req.FromVesselID, validation.Required),
		validation.Field(&req.ToVesselID, validation.Required),
		validation.Field(&req.Unit, validation.Required),
		validation.Field(&req.Reason, validation.Required),
	)
	if err != nil {
		return err
	}

	if req.FromVesselID == req.ToVesselID {
		return errSameVessel
	}
	if !req.Amount.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}

type AdjustRequest struct {
	BatchID  uint            `json:"batch_id"`
	VesselID *uint           `json:"vessel_id,omitempty"`
	Measured decimal.Decimal `json:"measured"`
	Unit     string          `json:"unit"`
	Reason   string          `json:"reason"`
}

func (req *AdjustRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.BatchID, validation.Required),
		validation.Field(&req.Unit, validation.Required),
		validation.Field(&req.Reason, validation.Required, validation.In(
			domain.ReasonEvaporationLoss,
			domain.ReasonSpillage,
			domain.ReasonCorrectionUp,
			domain.ReasonCorrectionDown,
			domain.ReasonMeterCalibration,
		)),
	)
	if err != nil {
		return err
	}

	if req.Measured.IsNegative() {
		return errNonPositiveAmount
	}

	return nil
}

type DistillerySendRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Unit   string          `json:"unit"`
}

func (req *DistillerySendRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Unit, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}

type DistilleryReceiveRequest struct {
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Unit          string          `json:"unit"`
	ABV           decimal.Decimal `json:"abv"`
	SourceBatchID uint            `json:"source_batch_id"`
	VesselID      uint            `json:"vessel_id"`
}

func (req *DistilleryReceiveRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Unit, validation.Required),
		validation.Field(&req.SourceBatchID, validation.Required),
		validation.Field(&req.VesselID, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}

type PackageRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Unit      string          `json:"unit"`
	UnitCount int             `json:"unit_count"`
	Format    string          `json:"format"`
}

func (req *PackageRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Unit, validation.Required),
		validation.Field(&req.UnitCount, validation.Required, validation.Min(1)),
		validation.Field(&req.Format, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}
