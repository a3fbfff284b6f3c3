package service

import (
	"context"
	"fmt"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

var ErrEmptyBlend = domain.ErrEmptyBlend

type BlendRepository interface {
	ApplyBlend(ctx context.Context, params dao.BlendParams) (domain.BlendResult, error)
}

type BlendService struct {
	repo BlendRepository
}

func NewBlendService(repo BlendRepository) *BlendService {
	return &BlendService{
		repo: repo,
	}
}

// Blend combines the requested source volumes into a new destination batch.
// ABV per source comes from the stored batch rows, not from the caller, so the
// weighted result cannot be skewed by a stale client value.
func (s *BlendService) Blend(ctx context.Context, op domain.BlendOperation, actorID uint) (domain.BlendResult, error) {
	if len(op.Sources) == 0 {
		return domain.BlendResult{}, ErrEmptyBlend
	}

	sources := make([]dao.BlendSourceParams, len(op.Sources))
	for i, src := range op.Sources {
		if src.Volume.IsNegative() || src.Volume.IsZero() {
			return domain.BlendResult{}, fmt.Errorf("%w: source batch %d", ErrEmptyBlend, src.BatchID)
		}
		sources[i] = dao.BlendSourceParams{
			BatchID: src.BatchID,
			Liters:  src.Volume,
		}
	}

	result, err := s.repo.ApplyBlend(ctx, dao.BlendParams{
		Sources:             sources,
		DestinationVesselID: op.DestinationVesselID,
		DestinationName:     op.DestinationName,
		ActorID:             actorID,
	})
	if err != nil {
		return domain.BlendResult{}, fmt.Errorf("s.repo.ApplyBlend -> %w", err)
	}

	return result, nil
}

// Preview computes the blend math without touching the ledger.
func (s *BlendService) Preview(sources []domain.BlendSource) (domain.BlendResult, error) {
	total, weighted, err := domain.Blend(sources)
	if err != nil {
		return domain.BlendResult{}, err
	}

	return domain.BlendResult{
		TotalLiters: total,
		WeightedABV: weighted,
		Sources:     domain.Proportions(sources, total),
	}, nil
}
