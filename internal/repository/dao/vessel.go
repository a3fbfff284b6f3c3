package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrVesselNotFound          = errors.New("vessel not found")
	ErrVesselNameExists        = errors.New("vessel name already exists")
	ErrVesselRetired           = errors.New("vessel is retired")
	ErrInvalidStatusTransition = errors.New("invalid vessel status transition")
	ErrConcurrentModification  = errors.New("concurrent modification, retry")
)

type Vessel struct {
	ID             uint            `gorm:"primaryKey"`
	Name           string          `gorm:"unique;not null"`
	Kind           string          `gorm:"not null"` // "tank", "barrel", "tote"
	CapacityLiters decimal.Decimal `gorm:"type:decimal(20,3);not null"`
	Status         string          `gorm:"not null;default:Available"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

type VesselDAO struct {
	db *gorm.DB
}

func NewVesselDAO(db *gorm.DB) *VesselDAO {
	return &VesselDAO{
		db: db,
	}
}

func (d *VesselDAO) Insert(ctx context.Context, vessel Vessel, actorID uint) (Vessel, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vessel).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) &&
				pgErr.Code == pgerrcode.UniqueViolation &&
				strings.Contains(pgErr.Message, `unique constraint "uni_vessels_name"`) {
				return ErrVesselNameExists
			}

			return err
		}

		return appendAudit(tx, auditTableVessels, vessel.ID, auditOpCreate, nil, vesselSnapshot(vessel), actorID)
	})
	if err != nil {
		return Vessel{}, err
	}

	return vessel, nil
}

func (d *VesselDAO) GetByID(ctx context.Context, id uint) (Vessel, error) {
	var vessel Vessel
	err := d.db.WithContext(ctx).First(&vessel, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Vessel{}, ErrVesselNotFound
	}
	if err != nil {
		return Vessel{}, err
	}

	return vessel, nil
}

func (d *VesselDAO) GetAll(ctx context.Context) ([]Vessel, error) {
	var vessels []Vessel
	if err := d.db.WithContext(ctx).Order("id").Find(&vessels).Error; err != nil {
		return nil, err
	}

	return vessels, nil
}

// UpdateStatus moves a vessel through its lifecycle. Occupied is owned by the
// ledger's assignment path and cannot be set here; Retired is terminal. The
// version check makes a concurrent edit fail fast instead of silently losing a
// write.
func (d *VesselDAO) UpdateStatus(ctx context.Context, id uint, status string, actorID uint) (Vessel, error) {
	var vessel Vessel
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&vessel, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVesselNotFound
			}
			return err
		}

		if vessel.Status == "Retired" || status == "Occupied" || status == vessel.Status {
			return ErrInvalidStatusTransition
		}

		old := vesselSnapshot(vessel)

		result := tx.Model(&Vessel{}).
			Where("id = ? AND version = ?", vessel.ID, vessel.Version).
			Updates(map[string]any{"status": status, "version": vessel.Version + 1})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentModification
		}

		vessel.Status = status
		vessel.Version++

		return appendAudit(tx, auditTableVessels, vessel.ID, auditOpUpdate, old, vesselSnapshot(vessel), actorID)
	})
	if err != nil {
		return Vessel{}, err
	}

	return vessel, nil
}

func vesselSnapshot(v Vessel) map[string]any {
	return map[string]any{
		"name":            v.Name,
		"kind":            v.Kind,
		"capacity_liters": v.CapacityLiters,
		"status":          v.Status,
	}
}
