package service

import (
	"context"
	"fmt"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository"
)

var (
	ErrVesselNotFound          = repository.ErrVesselNotFound
	ErrVesselNameExists        = repository.ErrVesselNameExists
	ErrVesselRetired           = repository.ErrVesselRetired
	ErrInvalidStatusTransition = repository.ErrInvalidStatusTransition
	ErrConcurrentModification  = repository.ErrConcurrentModification
)

type VesselRepository interface {
	Create(ctx context.Context, vessel domain.Vessel, actorID uint) (domain.Vessel, error)
	GetByID(ctx context.Context, id uint) (domain.Vessel, error)
	GetAll(ctx context.Context) ([]domain.Vessel, error)
	UpdateStatus(ctx context.Context, id uint, status domain.VesselStatus, actorID uint) (domain.Vessel, error)
}

type VesselService struct {
	repo VesselRepository
}

func NewVesselService(repo VesselRepository) *VesselService {
	return &VesselService{
		repo: repo,
	}
}

func (s *VesselService) CreateVessel(ctx context.Context, vessel domain.Vessel, actorID uint) (domain.Vessel, error) {
	vessel.Status = domain.VesselAvailable

	created, err := s.repo.Create(ctx, vessel, actorID)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *VesselService) GetVessel(ctx context.Context, id uint) (domain.Vessel, error) {
	vessel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return vessel, nil
}

func (s *VesselService) ListVessels(ctx context.Context) ([]domain.Vessel, error) {
	vessels, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAll -> %w", err)
	}

	return vessels, nil
}

// UpdateStatus moves a vessel through its lifecycle. The transition rules live
// on the domain type; the repository re-checks them against the persisted row
// so a stale read cannot sneak a transition through.
func (s *VesselService) UpdateStatus(ctx context.Context, id uint, status domain.VesselStatus, actorID uint) (domain.Vessel, error) {
	vessel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	if !vessel.CanTransition(status) {
		return domain.Vessel{}, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status, actorID)
	if err != nil {
		return domain.Vessel{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return updated, nil
}
