package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quincevale/cidery-api/internal/domain"
)

const (
	auditTableVessels  = "vessels"
	auditTableBatches  = "batches"
	auditTableLots     = "purchase_lots"
	auditTablePackages = "packaging_runs"

	auditOpCreate = "Create"
	auditOpUpdate = "Update"
)

// AuditLog rows are append-only: written once inside the mutating transaction,
// never updated or deleted afterwards. Full snapshots are kept alongside the
// diff so the diff stays a derived convenience, not the sole record.
type AuditLog struct {
	ID          string    `gorm:"size:36;primaryKey"`
	Table       string    `gorm:"column:table_name;size:64;index:idx_audit_table_record,priority:1;not null"`
	RecordID    string    `gorm:"size:64;index:idx_audit_table_record,priority:2;not null"`
	Operation   string    `gorm:"size:16;not null"`
	OldSnapshot string    `gorm:"type:jsonb"`
	NewSnapshot string    `gorm:"type:jsonb"`
	Diff        string    `gorm:"type:jsonb"`
	ActorID     uint      `gorm:"index"`
	RecordedAt  time.Time `gorm:"index;not null"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// appendAudit writes the audit row for one mutation inside the caller's
// transaction, so a committed mutation and its audit entry are inseparable.
func appendAudit(tx *gorm.DB, table string, recordID uint, operation string, old, new map[string]any, actorID uint) error {
	diff := domain.ComputeDiff(old, new)

	oldJSON, err := marshalSnapshot(old)
	if err != nil {
		return fmt.Errorf("marshal old snapshot -> %w", err)
	}
	newJSON, err := marshalSnapshot(new)
	if err != nil {
		return fmt.Errorf("marshal new snapshot -> %w", err)
	}
	diffJSON, err := json.Marshal(diff)
	if err != nil {
		return fmt.Errorf("marshal diff -> %w", err)
	}

	entry := AuditLog{
		ID:          uuid.NewString(),
		Table:       table,
		RecordID:    strconv.FormatUint(uint64(recordID), 10),
		Operation:   operation,
		OldSnapshot: oldJSON,
		NewSnapshot: newJSON,
		Diff:        string(diffJSON),
		ActorID:     actorID,
		RecordedAt:  time.Now().UTC(),
	}

	return tx.Create(&entry).Error
}

func marshalSnapshot(snapshot map[string]any) (string, error) {
	if snapshot == nil {
		return "null", nil
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

type AuditDAO struct {
	db *gorm.DB
}

func NewAuditDAO(db *gorm.DB) *AuditDAO {
	return &AuditDAO{
		db: db,
	}
}

type AuditFilter struct {
	TableName string
	RecordID  string
	ActorID   uint
	Since     time.Time
	Until     time.Time
	Limit     int
	Offset    int
}

func (d *AuditDAO) Find(ctx context.Context, filter AuditFilter) ([]AuditLog, error) {
	query := d.db.WithContext(ctx).Model(&AuditLog{})

	if filter.TableName != "" {
		query = query.Where("table_name = ?", filter.TableName)
	}
	if filter.RecordID != "" {
		query = query.Where("record_id = ?", filter.RecordID)
	}
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if !filter.Since.IsZero() {
		query = query.Where("recorded_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		query = query.Where("recorded_at < ?", filter.Until)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []AuditLog
	err := query.Order("recorded_at, id").Limit(limit).Offset(filter.Offset).Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
