package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
	"github.com/quincevale/cidery-api/internal/unit"
)

var defaultTolerancePct = decimal.RequireFromString("0.5")

type ReconciliationRepository interface {
	ClassVolumes(ctx context.Context, asOf time.Time) ([]dao.ClassVolume, error)
	Save(ctx context.Context, snapshot domain.ReconciliationSnapshot) (domain.ReconciliationSnapshot, error)
	GetAll(ctx context.Context, taxClass domain.TaxClass) ([]domain.ReconciliationSnapshot, error)
}

type ReconciliationService struct {
	repo ReconciliationRepository

	// tolerancePct reads the current tolerance so a config reload takes
	// effect without restarting the service.
	tolerancePct func() string
}

func NewReconciliationService(repo ReconciliationRepository, tolerancePct func() string) *ReconciliationService {
	return &ReconciliationService{
		repo:         repo,
		tolerancePct: tolerancePct,
	}
}

func (s *ReconciliationService) tolerance() decimal.Decimal {
	if s.tolerancePct == nil {
		return defaultTolerancePct
	}

	pct, err := decimal.NewFromString(s.tolerancePct())
	if err != nil || pct.IsNegative() {
		return defaultTolerancePct
	}

	return pct
}

// Reconcile compares the ledger's per-tax-class totals as of the period end
// against externally reported closing balances, persisting one snapshot per
// reported class. Discrepancies beyond tolerance are returned as warnings;
// nothing is ever corrected here. Corrections flow back through audited
// adjustments.
func (s *ReconciliationService) Reconcile(ctx context.Context, periodStart, periodEnd time.Time, reported map[domain.TaxClass]decimal.Decimal) ([]domain.ReconciliationSnapshot, []domain.Warning, error) {
	volumes, err := s.repo.ClassVolumes(ctx, periodEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("s.repo.ClassVolumes -> %w", err)
	}

	computed := make(map[domain.TaxClass]decimal.Decimal)
	proof := make(map[domain.TaxClass]decimal.Decimal)
	for _, v := range volumes {
		class := domain.TaxClass(v.TaxClass)
		computed[class] = computed[class].Add(v.Liters)

		pg, err := unit.ProofGallons(v.Liters, unit.Liter, v.ABV)
		if err != nil {
			return nil, nil, fmt.Errorf("unit.ProofGallons -> %w", err)
		}
		proof[class] = proof[class].Add(pg)
	}

	tolerance := s.tolerance()

	var (
		snapshots []domain.ReconciliationSnapshot
		warnings  []domain.Warning
	)
	for _, class := range []domain.TaxClass{domain.TaxClassCider, domain.TaxClassWine, domain.TaxClassSpirits} {
		reportedLiters, ok := reported[class]
		if !ok {
			continue
		}

		computedLiters := computed[class]
		discrepancy := discrepancyPct(computedLiters, reportedLiters)
		within := discrepancy.LessThanOrEqual(tolerance)

		snapshot, err := s.repo.Save(ctx, domain.ReconciliationSnapshot{
			PeriodStart:     periodStart,
			PeriodEnd:       periodEnd,
			TaxClass:        class,
			ComputedLiters:  computedLiters,
			ReportedLiters:  reportedLiters,
			ProofGallons:    proof[class],
			DiscrepancyPct:  discrepancy,
			WithinTolerance: within,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("s.repo.Save -> %w", err)
		}
		snapshots = append(snapshots, snapshot)

		if !within {
			warnings = append(warnings, domain.Warning{
				Code: domain.WarnReconciliationDiscrepancy,
				Message: fmt.Sprintf("%s: ledger has %s L, reported %s L (%s%% apart, tolerance %s%%)",
					class, computedLiters, reportedLiters, discrepancy, tolerance),
			})
		}
	}

	return snapshots, warnings, nil
}

func (s *ReconciliationService) Snapshots(ctx context.Context, taxClass domain.TaxClass) ([]domain.ReconciliationSnapshot, error) {
	snapshots, err := s.repo.GetAll(ctx, taxClass)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAll -> %w", err)
	}

	return snapshots, nil
}

// discrepancyPct measures how far apart the two balances sit, relative to the
// larger of them so a zero on either side stays well defined.
func discrepancyPct(computed, reported decimal.Decimal) decimal.Decimal {
	diff := computed.Sub(reported).Abs()
	if diff.IsZero() {
		return decimal.Zero
	}

	base := computed.Abs()
	if reported.Abs().GreaterThan(base) {
		base = reported.Abs()
	}
	if base.IsZero() {
		return decimal.Zero
	}

	return diff.Mul(decimal.NewFromInt(100)).DivRound(base, unit.VolumePlaces)
}
