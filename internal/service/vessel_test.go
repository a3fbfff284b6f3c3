package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/unit"
)

type mockVesselRepository struct {
	createFn       func(ctx context.Context, vessel domain.Vessel, actorID uint) (domain.Vessel, error)
	getByIDFn      func(ctx context.Context, id uint) (domain.Vessel, error)
	getAllFn       func(ctx context.Context) ([]domain.Vessel, error)
	updateStatusFn func(ctx context.Context, id uint, status domain.VesselStatus, actorID uint) (domain.Vessel, error)
}

func (m *mockVesselRepository) Create(ctx context.Context, vessel domain.Vessel, actorID uint) (domain.Vessel, error) {
	return m.createFn(ctx, vessel, actorID)
}

func (m *mockVesselRepository) GetByID(ctx context.Context, id uint) (domain.Vessel, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockVesselRepository) GetAll(ctx context.Context) ([]domain.Vessel, error) {
	return m.getAllFn(ctx)
}

func (m *mockVesselRepository) UpdateStatus(ctx context.Context, id uint, status domain.VesselStatus, actorID uint) (domain.Vessel, error) {
	return m.updateStatusFn(ctx, id, status, actorID)
}

func vesselQuantity(t *testing.T, amount string) domain.Quantity {
	t.Helper()

	q, err := domain.NewQuantity(decimal.RequireFromString(amount), unit.Liter)
	require.NoError(t, err)

	return q
}

func TestVesselService_CreateVessel_ForcesAvailable(t *testing.T) {
	var stored domain.Vessel
	svc := NewVesselService(&mockVesselRepository{
		createFn: func(_ context.Context, vessel domain.Vessel, _ uint) (domain.Vessel, error) {
			stored = vessel
			vessel.ID = 3
			return vessel, nil
		},
	})

	created, err := svc.CreateVessel(context.Background(), domain.Vessel{
		Name:     "FV-1",
		Kind:     "tank",
		Capacity: vesselQuantity(t, "1000"),
		Status:   domain.VesselOccupied, // ignored
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.VesselAvailable, stored.Status)
	assert.Equal(t, uint(3), created.ID)
}

func TestVesselService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		current domain.VesselStatus
		target  domain.VesselStatus
		wantErr error
	}{
		{"available to cleaning", domain.VesselAvailable, domain.VesselCleaning, nil},
		{"cleaning to available", domain.VesselCleaning, domain.VesselAvailable, nil},
		{"available to retired", domain.VesselAvailable, domain.VesselRetired, nil},
		{"retired is terminal", domain.VesselRetired, domain.VesselAvailable, ErrInvalidStatusTransition},
		{"occupied only via assignment", domain.VesselAvailable, domain.VesselOccupied, ErrInvalidStatusTransition},
		{"no self transition", domain.VesselCleaning, domain.VesselCleaning, ErrInvalidStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewVesselService(&mockVesselRepository{
				getByIDFn: func(_ context.Context, id uint) (domain.Vessel, error) {
					return domain.Vessel{ID: id, Status: tt.current}, nil
				},
				updateStatusFn: func(_ context.Context, id uint, status domain.VesselStatus, _ uint) (domain.Vessel, error) {
					return domain.Vessel{ID: id, Status: status}, nil
				},
			})

			updated, err := svc.UpdateStatus(context.Background(), 5, tt.target, 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.target, updated.Status)
		})
	}
}

func TestVesselService_UpdateStatus_NotFound(t *testing.T) {
	svc := NewVesselService(&mockVesselRepository{
		getByIDFn: func(_ context.Context, _ uint) (domain.Vessel, error) {
			return domain.Vessel{}, ErrVesselNotFound
		},
	})

	_, err := svc.UpdateStatus(context.Background(), 99, domain.VesselCleaning, 1)
	assert.ErrorIs(t, err, ErrVesselNotFound)
}
