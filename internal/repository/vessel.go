package repository

import (
	"context"
	"fmt"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
	"github.com/quincevale/cidery-api/internal/unit"
)

var (
	ErrVesselNotFound          = dao.ErrVesselNotFound
	ErrVesselNameExists        = dao.ErrVesselNameExists
	ErrVesselRetired           = dao.ErrVesselRetired
	ErrInvalidStatusTransition = dao.ErrInvalidStatusTransition
	ErrConcurrentModification  = dao.ErrConcurrentModification
)

type VesselDAO interface {
	Insert(ctx context.Context, vessel dao.Vessel, actorID uint) (dao.Vessel, error)
	GetByID(ctx context.Context, id uint) (dao.Vessel, error)
	GetAll(ctx context.Context) ([]dao.Vessel, error)
	UpdateStatus(ctx context.Context, id uint, status string, actorID uint) (dao.Vessel, error)
}

type VesselRepository struct {
	dao VesselDAO
}

func NewVesselRepository(dao VesselDAO) *VesselRepository {
	return &VesselRepository{
		dao: dao,
	}
}

func (r *VesselRepository) domainToDao(v domain.Vessel) (dao.Vessel, error) {
	capacity, err := v.Capacity.Liters()
	if err != nil {
		return dao.Vessel{}, fmt.Errorf("v.Capacity.Liters -> %w", err)
	}

	return dao.Vessel{
		ID:             v.ID,
		Name:           v.Name,
		Kind:           v.Kind,
		CapacityLiters: capacity,
		Status:         string(v.Status),
		Version:        v.Version,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}, nil
}

func (r *VesselRepository) daoToDomain(v dao.Vessel) domain.Vessel {
	return domain.Vessel{
		ID:        v.ID,
		Name:      v.Name,
		Kind:      v.Kind,
		Capacity:  domain.Quantity{Amount: v.CapacityLiters, Unit: unit.Liter},
		Status:    domain.VesselStatus(v.Status),
		Version:   v.Version,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func (r *VesselRepository) Create(ctx context.Context, vessel domain.Vessel, actorID uint) (domain.Vessel, error) {
	daoVessel, err := r.domainToDao(vessel)
	if err != nil {
		return domain.Vessel{}, err
	}

	created, err := r.dao.Insert(ctx, daoVessel, actorID)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *VesselRepository) GetByID(ctx context.Context, id uint) (domain.Vessel, error) {
	vessel, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("r.dao.GetByID -> %w", err)
	}

	return r.daoToDomain(vessel), nil
}

func (r *VesselRepository) GetAll(ctx context.Context) ([]domain.Vessel, error) {
	vessels, err := r.dao.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetAll -> %w", err)
	}

	result := make([]domain.Vessel, len(vessels))
	for i, vessel := range vessels {
		result[i] = r.daoToDomain(vessel)
	}

	return result, nil
}

func (r *VesselRepository) UpdateStatus(ctx context.Context, id uint, status domain.VesselStatus, actorID uint) (domain.Vessel, error) {
	updated, err := r.dao.UpdateStatus(ctx, id, string(status), actorID)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return r.daoToDomain(updated), nil
}
