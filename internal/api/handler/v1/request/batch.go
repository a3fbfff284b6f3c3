package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var errNoSources = errors.New("at least one composition source is required")

type SourceRefRequest struct {
	Kind       string          `json:"kind"`
	BatchID    *uint           `json:"batch_id,omitempty"`
	LotID      *uint           `json:"lot_id,omitempty"`
	Proportion decimal.Decimal `json:"proportion"`
}

func (req *SourceRefRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Kind, validation.Required, validation.In("Batch", "PurchaseLot")),
	)
	if err != nil {
		return err
	}

	if req.Kind == "Batch" && req.BatchID == nil {
		return errors.New("batch_id is required for a Batch source")
	}
	if req.Kind == "PurchaseLot" && req.LotID == nil {
		return errors.New("lot_id is required for a PurchaseLot source")
	}

	return nil
}

type CreateBatchRequest struct {
	Name    string             `json:"name"`
	ABV     decimal.Decimal    `json:"abv"`
	Sources []SourceRefRequest `json:"sources"`
}

func (req *CreateBatchRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
	)
	if err != nil {
		return err
	}

	if len(req.Sources) == 0 {
		return errNoSources
	}
	for i := range req.Sources {
		if err := req.Sources[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

type CreatePurchaseLotRequest struct {
	Vendor     string          `json:"vendor"`
	Variety    string          `json:"variety"`
	Amount     decimal.Decimal `json:"amount"`
	Unit       string          `json:"unit"`
	ReceivedAt time.Time       `json:"received_at"`
}

func (req *CreatePurchaseLotRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Vendor, validation.Required),
		validation.Field(&req.Variety, validation.Required),
		validation.Field(&req.Unit, validation.Required),
		validation.Field(&req.ReceivedAt, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}
