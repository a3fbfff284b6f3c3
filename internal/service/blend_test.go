package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

type mockBlendRepository struct {
	applyFn func(ctx context.Context, params dao.BlendParams) (domain.BlendResult, error)
}

func (m *mockBlendRepository) ApplyBlend(ctx context.Context, params dao.BlendParams) (domain.BlendResult, error) {
	return m.applyFn(ctx, params)
}

func TestBlendService_Blend(t *testing.T) {
	var got dao.BlendParams
	svc := NewBlendService(&mockBlendRepository{
		applyFn: func(_ context.Context, params dao.BlendParams) (domain.BlendResult, error) {
			got = params
			return domain.BlendResult{
				DestinationBatchID: 10,
				TotalLiters:        decimal.NewFromInt(50),
				WeightedABV:        decimal.NewFromInt(22),
			}, nil
		},
	})

	result, err := svc.Blend(context.Background(), domain.BlendOperation{
		Sources: []domain.BlendSource{
			{BatchID: 1, Volume: decimal.NewFromInt(20)},
			{BatchID: 2, Volume: decimal.NewFromInt(30)},
		},
		DestinationVesselID: 4,
		DestinationName:     "Pommeau 2026",
	}, 7)
	require.NoError(t, err)

	assert.Equal(t, uint(10), result.DestinationBatchID)
	require.Len(t, got.Sources, 2)
	assert.Equal(t, uint(1), got.Sources[0].BatchID)
	assert.Equal(t, uint(4), got.DestinationVesselID)
	assert.Equal(t, "Pommeau 2026", got.DestinationName)
	assert.Equal(t, uint(7), got.ActorID)
}

func TestBlendService_Blend_RejectsEmptyOrZero(t *testing.T) {
	svc := NewBlendService(&mockBlendRepository{})

	_, err := svc.Blend(context.Background(), domain.BlendOperation{}, 7)
	assert.ErrorIs(t, err, ErrEmptyBlend)

	_, err = svc.Blend(context.Background(), domain.BlendOperation{
		Sources: []domain.BlendSource{{BatchID: 1, Volume: decimal.Zero}},
	}, 7)
	assert.ErrorIs(t, err, ErrEmptyBlend)
}

func TestBlendService_Preview(t *testing.T) {
	svc := NewBlendService(&mockBlendRepository{})

	// 20 L of brandy at 55% into 30 L of juice.
	result, err := svc.Preview([]domain.BlendSource{
		{BatchID: 1, Volume: decimal.NewFromInt(20), ABV: decimal.NewFromInt(55)},
		{BatchID: 2, Volume: decimal.NewFromInt(30), ABV: decimal.Zero},
	})
	require.NoError(t, err)

	assert.True(t, result.TotalLiters.Equal(decimal.NewFromInt(50)), "total %v", result.TotalLiters)
	assert.True(t, result.WeightedABV.Equal(decimal.NewFromInt(22)), "abv %v", result.WeightedABV)

	require.Len(t, result.Sources, 2)
	assert.True(t, result.Sources[0].Proportion.Equal(decimal.NewFromInt(40)), "got %v", result.Sources[0].Proportion)
	assert.True(t, result.Sources[1].Proportion.Equal(decimal.NewFromInt(60)), "got %v", result.Sources[1].Proportion)
}
