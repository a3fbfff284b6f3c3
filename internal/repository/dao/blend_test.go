package dao

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quincevale/cidery-api/internal/domain"
)

// Exercises the brandy-and-juice round trip: cider leaves for distillation,
// comes back as spirit, and is blended with fresh juice into a pommeau-style
// batch at the weighted ABV.
func TestLedgerDAO_DistillAndBlendRoundTrip(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerDAO(testDB)

	ciderTank := createTestVessel(t, "roundtrip-cider-tank", "1000")
	spiritTank := createTestVessel(t, "roundtrip-spirit-tank", "100")
	juiceTank := createTestVessel(t, "roundtrip-juice-tank", "500")
	blendTank := createTestVessel(t, "roundtrip-blend-tank", "500")

	cider := createTestBatch(t, "roundtrip-cider", "7")
	juice := createTestBatch(t, "roundtrip-juice", "0")

	_, err := ledger.AssignBatch(ctx, AssignParams{
		BatchID:  cider.ID,
		VesselID: ciderTank.ID,
		Liters:   decimal.NewFromInt(200),
		ABV:      decimal.NewFromInt(7),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)

	_, err = ledger.AssignBatch(ctx, AssignParams{
		BatchID:  juice.ID,
		VesselID: juiceTank.ID,
		Liters:   decimal.NewFromInt(30),
		ABV:      decimal.Zero,
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)

	// The whole cider batch leaves for the distillery and its tank frees up.
	sendEntry, err := ledger.SendToDistillery(ctx, cider.ID, decimal.NewFromInt(200), 1)
	require.NoError(t, err)
	assert.True(t, sendEntry.DeltaLiters.Equal(decimal.NewFromInt(-200)))
	assert.Equal(t, domain.ReasonDistillerySend, sendEntry.ReasonCode)

	occupant, err := ledger.Occupant(ctx, ciderTank.ID)
	require.NoError(t, err)
	assert.Nil(t, occupant)

	// 20 L of brandy at 55% comes back as a new spirit batch.
	brandy, recvEntry, err := ledger.ReceiveFromDistillery(ctx, ReceiveParams{
		Name:          "roundtrip-brandy",
		Liters:        decimal.NewFromInt(20),
		ABV:           decimal.NewFromInt(55),
		SourceBatchID: cider.ID,
		VesselID:      spiritTank.ID,
		ActorID:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, "spirits", brandy.TaxClass)
	assert.Equal(t, domain.ReasonDistilleryRecv, recvEntry.ReasonCode)
	require.Len(t, brandy.Sources, 1)
	require.NotNil(t, brandy.Sources[0].SourceBatchID)
	assert.Equal(t, cider.ID, *brandy.Sources[0].SourceBatchID)

	// Blend all the brandy with all the juice.
	outcome, err := ledger.ApplyBlend(ctx, BlendParams{
		Sources: []BlendSourceParams{
			{BatchID: brandy.ID, Liters: decimal.NewFromInt(20)},
			{BatchID: juice.ID, Liters: decimal.NewFromInt(30)},
		},
		DestinationVesselID: blendTank.ID,
		DestinationName:     "roundtrip-pommeau",
		ActorID:             1,
	})
	require.NoError(t, err)

	assert.True(t, outcome.TotalLiters.Equal(decimal.NewFromInt(50)), "total %v", outcome.TotalLiters)
	assert.True(t, outcome.WeightedABV.Equal(decimal.NewFromInt(22)), "abv %v", outcome.WeightedABV)
	assert.Equal(t, "wine", outcome.Batch.TaxClass)

	// Provenance proportions on the destination batch: 40% brandy, 60% juice.
	require.Len(t, outcome.Batch.Sources, 2)
	byBatch := map[uint]decimal.Decimal{}
	for _, src := range outcome.Batch.Sources {
		require.NotNil(t, src.SourceBatchID)
		byBatch[*src.SourceBatchID] = src.ProportionPct
	}
	assert.True(t, byBatch[brandy.ID].Equal(decimal.NewFromInt(40)), "brandy %v", byBatch[brandy.ID])
	assert.True(t, byBatch[juice.ID].Equal(decimal.NewFromInt(60)), "juice %v", byBatch[juice.ID])

	// Fully drained sources are emptied; the blend occupies its vessel.
	brandyVolume, err := ledger.ComputedVolume(ctx, brandy.ID)
	require.NoError(t, err)
	assert.True(t, brandyVolume.IsZero(), "brandy volume %v", brandyVolume)

	blendOccupant, err := ledger.Occupant(ctx, blendTank.ID)
	require.NoError(t, err)
	require.NotNil(t, blendOccupant)
	assert.Equal(t, outcome.Batch.ID, *blendOccupant)

	// Every blend leg shares one correlation id.
	require.NotEmpty(t, outcome.Entries)
	for _, e := range outcome.Entries {
		assert.Equal(t, outcome.CorrelationID, e.CorrelationID)
	}
}

func TestLedgerDAO_Package(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerDAO(testDB)

	tank := createTestVessel(t, "package-tank", "1000")
	batch := createTestBatch(t, "package-batch", "6.5")

	_, err := ledger.AssignBatch(ctx, AssignParams{
		BatchID:  batch.ID,
		VesselID: tank.ID,
		Liters:   decimal.NewFromInt(100),
		ABV:      decimal.RequireFromString("6.5"),
		Reason:   domain.ReasonPressRun,
		ActorID:  1,
	})
	require.NoError(t, err)

	run, entry, err := ledger.Package(ctx, PackageParams{
		BatchID:   batch.ID,
		Liters:    decimal.NewFromInt(60),
		UnitCount: 80,
		Format:    "750mL bottle",
		ActorID:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, run.UnitCount)
	assert.True(t, entry.DeltaLiters.Equal(decimal.NewFromInt(-60)))
	assert.Equal(t, domain.ReasonPackaged, entry.ReasonCode)

	// Draining the rest completes the batch and frees the tank.
	_, _, err = ledger.Package(ctx, PackageParams{
		BatchID:   batch.ID,
		Liters:    decimal.NewFromInt(40),
		UnitCount: 2,
		Format:    "19.5L keg",
		ActorID:   1,
	})
	require.NoError(t, err)

	got, err := NewBatchDAO(testDB).GetByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Completed", got.Status)

	occupant, err := ledger.Occupant(ctx, tank.ID)
	require.NoError(t, err)
	assert.Nil(t, occupant)
}
