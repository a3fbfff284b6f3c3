package response

import (
	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/domain"
)

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type AdjustmentResponse struct {
	Entry    domain.TransactionEntry `json:"entry"`
	Warnings []domain.Warning        `json:"warnings,omitempty"`
}

type VesselResponse struct {
	Vessel   domain.Vessel `json:"vessel"`
	BatchID  *uint         `json:"batch_id,omitempty"`
	Occupied bool          `json:"occupied"`
}

type BatchVolumeResponse struct {
	BatchID     uint               `json:"batch_id"`
	Volume      domain.Quantity    `json:"volume"`
	Occupancies []domain.Occupancy `json:"occupancies"`
}

type PackagingResponse struct {
	Run   domain.PackagingRun     `json:"run"`
	Entry domain.TransactionEntry `json:"entry"`
}

type ReceiveResponse struct {
	Batch domain.Batch            `json:"batch"`
	Entry domain.TransactionEntry `json:"entry"`
}

type ReconciliationResponse struct {
	Snapshots []domain.ReconciliationSnapshot `json:"snapshots"`
	Warnings  []domain.Warning                `json:"warnings,omitempty"`
}

type ConversionResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Unit   string          `json:"unit"`
}
