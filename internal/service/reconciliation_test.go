package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

type mockReconciliationRepository struct {
	classVolumesFn func(ctx context.Context, asOf time.Time) ([]dao.ClassVolume, error)
	saveFn         func(ctx context.Context, snapshot domain.ReconciliationSnapshot) (domain.ReconciliationSnapshot, error)
	getAllFn       func(ctx context.Context, taxClass domain.TaxClass) ([]domain.ReconciliationSnapshot, error)
}

func (m *mockReconciliationRepository) ClassVolumes(ctx context.Context, asOf time.Time) ([]dao.ClassVolume, error) {
	return m.classVolumesFn(ctx, asOf)
}

func (m *mockReconciliationRepository) Save(ctx context.Context, snapshot domain.ReconciliationSnapshot) (domain.ReconciliationSnapshot, error) {
	return m.saveFn(ctx, snapshot)
}

func (m *mockReconciliationRepository) GetAll(ctx context.Context, taxClass domain.TaxClass) ([]domain.ReconciliationSnapshot, error) {
	return m.getAllFn(ctx, taxClass)
}

func passthroughSave(_ context.Context, snapshot domain.ReconciliationSnapshot) (domain.ReconciliationSnapshot, error) {
	return snapshot, nil
}

func TestReconciliationService_Reconcile_WithinTolerance(t *testing.T) {
	repo := &mockReconciliationRepository{
		classVolumesFn: func(_ context.Context, _ time.Time) ([]dao.ClassVolume, error) {
			return []dao.ClassVolume{
				{BatchID: 1, TaxClass: "cider", Liters: decimal.NewFromInt(600), ABV: decimal.RequireFromString("6.5")},
				{BatchID: 2, TaxClass: "cider", Liters: decimal.NewFromInt(400), ABV: decimal.RequireFromString("7")},
			}, nil
		},
		saveFn: passthroughSave,
	}
	svc := NewReconciliationService(repo, func() string { return "0.5" })

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	snapshots, warnings, err := svc.Reconcile(context.Background(), start, end, map[domain.TaxClass]decimal.Decimal{
		domain.TaxClassCider: decimal.NewFromInt(998),
	})
	require.NoError(t, err)

	assert.Empty(t, warnings)
	require.Len(t, snapshots, 1)
	snap := snapshots[0]
	assert.Equal(t, domain.TaxClassCider, snap.TaxClass)
	assert.True(t, snap.ComputedLiters.Equal(decimal.NewFromInt(1000)), "computed %v", snap.ComputedLiters)
	assert.True(t, snap.WithinTolerance)
	// 2 L apart on 1000 L is 0.2%.
	assert.True(t, snap.DiscrepancyPct.Equal(decimal.RequireFromString("0.2")), "pct %v", snap.DiscrepancyPct)
}

func TestReconciliationService_Reconcile_DiscrepancyWarning(t *testing.T) {
	repo := &mockReconciliationRepository{
		classVolumesFn: func(_ context.Context, _ time.Time) ([]dao.ClassVolume, error) {
			return []dao.ClassVolume{
				{BatchID: 3, TaxClass: "spirits", Liters: decimal.NewFromInt(100), ABV: decimal.NewFromInt(55)},
			}, nil
		},
		saveFn: passthroughSave,
	}
	svc := NewReconciliationService(repo, func() string { return "0.5" })

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	snapshots, warnings, err := svc.Reconcile(context.Background(), start, end, map[domain.TaxClass]decimal.Decimal{
		domain.TaxClassSpirits: decimal.NewFromInt(90),
	})
	require.NoError(t, err)

	require.Len(t, snapshots, 1)
	assert.False(t, snapshots[0].WithinTolerance)
	assert.True(t, snapshots[0].DiscrepancyPct.Equal(decimal.NewFromInt(10)), "pct %v", snapshots[0].DiscrepancyPct)

	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnReconciliationDiscrepancy, warnings[0].Code)
}

func TestReconciliationService_Reconcile_ProofGallons(t *testing.T) {
	repo := &mockReconciliationRepository{
		classVolumesFn: func(_ context.Context, _ time.Time) ([]dao.ClassVolume, error) {
			// 1 gallon of spirit at 50% ABV is exactly 1 proof gallon.
			return []dao.ClassVolume{
				{BatchID: 3, TaxClass: "spirits", Liters: decimal.RequireFromString("3.785411784"), ABV: decimal.NewFromInt(50)},
			}, nil
		},
		saveFn: passthroughSave,
	}
	svc := NewReconciliationService(repo, nil)

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	snapshots, _, err := svc.Reconcile(context.Background(), start, end, map[domain.TaxClass]decimal.Decimal{
		domain.TaxClassSpirits: decimal.RequireFromString("3.785411784"),
	})
	require.NoError(t, err)

	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].ProofGallons.Equal(decimal.NewFromInt(1)), "proof gallons %v", snapshots[0].ProofGallons)
}

func TestReconciliationService_ToleranceFallback(t *testing.T) {
	svc := NewReconciliationService(&mockReconciliationRepository{}, func() string { return "not-a-number" })
	assert.True(t, svc.tolerance().Equal(decimal.RequireFromString("0.5")))

	svc = NewReconciliationService(&mockReconciliationRepository{}, func() string { return "-1" })
	assert.True(t, svc.tolerance().Equal(decimal.RequireFromString("0.5")))

	svc = NewReconciliationService(&mockReconciliationRepository{}, func() string { return "2" })
	assert.True(t, svc.tolerance().Equal(decimal.NewFromInt(2)))
}

func TestDiscrepancyPct_ZeroBalances(t *testing.T) {
	assert.True(t, discrepancyPct(decimal.Zero, decimal.Zero).IsZero())
	assert.True(t, discrepancyPct(decimal.NewFromInt(100), decimal.Zero).Equal(decimal.NewFromInt(100)))
}
