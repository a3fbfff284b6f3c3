package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

type ReconciliationDAO interface {
	ClassVolumes(ctx context.Context, asOf time.Time) ([]dao.ClassVolume, error)
	Insert(ctx context.Context, snapshot *dao.ReconciliationSnapshot) error
	GetAll(ctx context.Context, taxClass string) ([]dao.ReconciliationSnapshot, error)
}

type ReconciliationRepository struct {
	dao ReconciliationDAO
}

func NewReconciliationRepository(dao ReconciliationDAO) *ReconciliationRepository {
	return &ReconciliationRepository{
		dao: dao,
	}
}

func (r *ReconciliationRepository) daoToDomain(s dao.ReconciliationSnapshot) domain.ReconciliationSnapshot {
	return domain.ReconciliationSnapshot{
		ID:              s.ID,
		PeriodStart:     s.PeriodStart,
		PeriodEnd:       s.PeriodEnd,
		TaxClass:        domain.TaxClass(s.TaxClass),
		ComputedLiters:  s.ComputedLiters,
		ReportedLiters:  s.ReportedLiters,
		ProofGallons:    s.ProofGallons,
		DiscrepancyPct:  s.DiscrepancyPct,
		WithinTolerance: s.WithinTolerance,
		CreatedAt:       s.CreatedAt,
	}
}

// ClassVolumes returns per-batch ledger balances as of the cutoff, grouped by
// tax class.
func (r *ReconciliationRepository) ClassVolumes(ctx context.Context, asOf time.Time) ([]dao.ClassVolume, error) {
	volumes, err := r.dao.ClassVolumes(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ClassVolumes -> %w", err)
	}

	return volumes, nil
}

func (r *ReconciliationRepository) Save(ctx context.Context, snapshot domain.ReconciliationSnapshot) (domain.ReconciliationSnapshot, error) {
	daoSnapshot := dao.ReconciliationSnapshot{
		PeriodStart:     snapshot.PeriodStart,
		PeriodEnd:       snapshot.PeriodEnd,
		TaxClass:        string(snapshot.TaxClass),
		ComputedLiters:  snapshot.ComputedLiters,
		ReportedLiters:  snapshot.ReportedLiters,
		ProofGallons:    snapshot.ProofGallons,
		DiscrepancyPct:  snapshot.DiscrepancyPct,
		WithinTolerance: snapshot.WithinTolerance,
	}

	if err := r.dao.Insert(ctx, &daoSnapshot); err != nil {
		return domain.ReconciliationSnapshot{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(daoSnapshot), nil
}

func (r *ReconciliationRepository) GetAll(ctx context.Context, taxClass domain.TaxClass) ([]domain.ReconciliationSnapshot, error) {
	snapshots, err := r.dao.GetAll(ctx, string(taxClass))
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetAll -> %w", err)
	}

	result := make([]domain.ReconciliationSnapshot, len(snapshots))
	for i, snapshot := range snapshots {
		result[i] = r.daoToDomain(snapshot)
	}

	return result, nil
}
