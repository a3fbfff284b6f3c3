package dao

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quincevale/cidery-api/internal/domain"
)

func TestLedgerDAO_AssignTransferConservation(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerDAO(testDB)

	tank := createTestVessel(t, "conservation-tank", "1000")
	barrel := createTestVessel(t, "conservation-barrel", "300")
	batch := createTestBatch(t, "conservation-batch", "6.5")

	entry, err := ledger.AssignBatch(ctx, AssignParams{
		BatchID:  batch.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(500),
		ABV:      decimal.RequireFromString("6.5"),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.EntryFill), entry.Kind)

	occupant, err := ledger.Occupant(ctx, tank.ID)
	require.NoError(t, err)
	require.NotNil(t, occupant)
	assert.Equal(t, batch.ID, *occupant)

	entries, err := ledger.TransferVolume(ctx, TransferParams{
		BatchID:      batch.ID,
		FromVesselID: tank.ID,
		ToVesselID:   barrel.ID,
		Liters:       decimal.NewFromInt(200),
		Reason:       domain.ReasonRacking,
		ActorID:      1,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// The legs cancel out and share a correlation id.
	assert.True(t, entries[0].DeltaLiters.Add(entries[1].DeltaLiters).IsZero())
	assert.Equal(t, entries[0].CorrelationID, entries[1].CorrelationID)
	assert.NotEmpty(t, entries[0].CorrelationID)

	// The transfer changed nothing about total batch volume.
	computed, err := ledger.ComputedVolume(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, computed.Equal(decimal.NewFromInt(500)), "computed %v", computed)

	current, err := ledger.CurrentVolume(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, current.Equal(computed), "current %v", current)

	occupancies, err := ledger.BatchOccupancies(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, occupancies, 2)
}

func TestLedgerDAO_AssignGuards(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerDAO(testDB)

	tank := createTestVessel(t, "guard-tank", "100")
	first := createTestBatch(t, "guard-batch-a", "6")
	second := createTestBatch(t, "guard-batch-b", "6")

	_, err := ledger.AssignBatch(ctx, AssignParams{
		BatchID:  first.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(150),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = ledger.AssignBatch(ctx, AssignParams{
		BatchID:  first.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(80),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)

	_, err = ledger.AssignBatch(ctx, AssignParams{
		BatchID:  second.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(10),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	assert.ErrorIs(t, err, ErrVesselOccupied)

	_, err = ledger.AssignBatch(ctx, AssignParams{
		BatchID:  second.ID,
		VesselID: 999999,
		Liters:   decimal.NewFromInt(10),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	assert.ErrorIs(t, err, ErrVesselNotFound)
}

func TestLedgerDAO_TransferInsufficientVolume(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerDAO(testDB)

	tank := createTestVessel(t, "insufficient-tank", "1000")
	barrel := createTestVessel(t, "insufficient-barrel", "1000")
	batch := createTestBatch(t, "insufficient-batch", "6")

	_, err := ledger.AssignBatch(ctx, AssignParams{
		BatchID:  batch.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(100),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)

	_, err = ledger.TransferVolume(ctx, TransferParams{
		BatchID:      batch.ID,
		FromVesselID: tank.ID,
		ToVesselID:   barrel.ID,
		Liters:       decimal.NewFromInt(500),
		Reason:       domain.ReasonRacking,
		ActorID:      1,
	})
	assert.ErrorIs(t, err, ErrInsufficientVolume)
}

func TestLedgerDAO_RecordAdjustment(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerDAO(testDB)

	tank := createTestVessel(t, "adjust-tank", "1000")
	batch := createTestBatch(t, "adjust-batch", "6")

	_, err := ledger.AssignBatch(ctx, AssignParams{
		BatchID:  batch.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(1000),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)

	// evaporation_loss cannot add volume
	_, _, err = ledger.RecordAdjustment(ctx, AdjustParams{
		BatchID:        batch.ID,
		MeasuredLiters: decimal.NewFromInt(1100),
		Reason:         domain.ReasonEvaporationLoss,
		ActorID:        1,
	})
	assert.ErrorIs(t, err, ErrAdjustmentDirection)

	// a no-op measurement never records an entry
	_, _, err = ledger.RecordAdjustment(ctx, AdjustParams{
		BatchID:        batch.ID,
		MeasuredLiters: decimal.NewFromInt(1000),
		Reason:         domain.ReasonEvaporationLoss,
		ActorID:        1,
	})
	assert.ErrorIs(t, err, ErrNoAdjustment)

	entry, large, err := ledger.RecordAdjustment(ctx, AdjustParams{
		BatchID:        batch.ID,
		MeasuredLiters: decimal.NewFromInt(995),
		Reason:         domain.ReasonEvaporationLoss,
		ActorID:        1,
	})
	require.NoError(t, err)
	assert.False(t, large)
	assert.True(t, entry.DeltaLiters.Equal(decimal.NewFromInt(-5)), "delta %v", entry.DeltaLiters)

	entry, large, err = ledger.RecordAdjustment(ctx, AdjustParams{
		BatchID:        batch.ID,
		MeasuredLiters: decimal.NewFromInt(800),
		Reason:         domain.ReasonSpillage,
		ActorID:        1,
	})
	require.NoError(t, err)
	assert.True(t, large, "a 195 L drop on 995 L is a large adjustment")
	assert.True(t, entry.DeltaLiters.Equal(decimal.NewFromInt(-195)), "delta %v", entry.DeltaLiters)

	computed, err := ledger.ComputedVolume(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, computed.Equal(decimal.NewFromInt(800)), "computed %v", computed)
}

func TestLedgerDAO_EntriesForBatch(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerDAO(testDB)

	tank := createTestVessel(t, "history-tank", "1000")
	batch := createTestBatch(t, "history-batch", "6")

	_, err := ledger.AssignBatch(ctx, AssignParams{
		BatchID:  batch.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(300),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)

	_, err = ledger.Fill(ctx, FillParams{
		BatchID:  batch.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(200),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)

	entries, err := ledger.EntriesForBatch(ctx, batch.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.Equal(t, batch.ID, e.BatchID)
		assert.NotEmpty(t, e.ID)
	}
}
