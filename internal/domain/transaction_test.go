package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionEntry_Validate(t *testing.T) {
	vesselID := uint(2)

	tests := []struct {
		name    string
		entry   TransactionEntry
		wantErr bool
	}{
		{
			name: "valid fill",
			entry: TransactionEntry{
				BatchID: 1, VesselID: &vesselID, Kind: EntryFill,
				DeltaLiters: dec("500"), ReasonCode: ReasonPressRun,
			},
		},
		{
			name: "fill must be positive",
			entry: TransactionEntry{
				BatchID: 1, VesselID: &vesselID, Kind: EntryFill,
				DeltaLiters: dec("-500"),
			},
			wantErr: true,
		},
		{
			name: "fill requires a vessel",
			entry: TransactionEntry{
				BatchID: 1, Kind: EntryFill, DeltaLiters: dec("500"),
			},
			wantErr: true,
		},
		{
			name: "transfer requires correlation",
			entry: TransactionEntry{
				BatchID: 1, VesselID: &vesselID, Kind: EntryTransfer,
				DeltaLiters: dec("-200"), ReasonCode: ReasonRacking,
			},
			wantErr: true,
		},
		{
			name: "valid transfer leg",
			entry: TransactionEntry{
				BatchID: 1, VesselID: &vesselID, Kind: EntryTransfer,
				DeltaLiters: dec("-200"), ReasonCode: ReasonRacking, CorrelationID: "c-1",
			},
		},
		{
			name: "evaporation loss cannot add volume",
			entry: TransactionEntry{
				BatchID: 1, Kind: EntryAdjustment,
				DeltaLiters: dec("50"), ReasonCode: ReasonEvaporationLoss,
			},
			wantErr: true,
		},
		{
			name: "correction up adds volume",
			entry: TransactionEntry{
				BatchID: 1, Kind: EntryAdjustment,
				DeltaLiters: dec("50"), ReasonCode: ReasonCorrectionUp,
			},
		},
		{
			name: "correction up cannot remove volume",
			entry: TransactionEntry{
				BatchID: 1, Kind: EntryAdjustment,
				DeltaLiters: dec("-50"), ReasonCode: ReasonCorrectionUp,
			},
			wantErr: true,
		},
		{
			name: "meter calibration moves either way",
			entry: TransactionEntry{
				BatchID: 1, Kind: EntryAdjustment,
				DeltaLiters: dec("-50"), ReasonCode: ReasonMeterCalibration,
			},
		},
		{
			name: "loss must be negative",
			entry: TransactionEntry{
				BatchID: 1, Kind: EntryLoss,
				DeltaLiters: dec("10"), ReasonCode: ReasonSpillage,
			},
			wantErr: true,
		},
		{
			name: "zero delta never records",
			entry: TransactionEntry{
				BatchID: 1, Kind: EntryFill, VesselID: &vesselID,
				DeltaLiters: dec("0"),
			},
			wantErr: true,
		},
		{
			name: "missing batch",
			entry: TransactionEntry{
				Kind: EntryFill, VesselID: &vesselID, DeltaLiters: dec("10"),
			},
			wantErr: true,
		},
		{
			name: "unknown kind",
			entry: TransactionEntry{
				BatchID: 1, Kind: EntryKind("Teleport"), DeltaLiters: dec("10"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEntry)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
