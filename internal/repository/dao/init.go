package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Vessel{},
		&Batch{},
		&BatchSource{},
		&Occupancy{},
		&TransactionEntry{},
		&AuditLog{},
		&PurchaseLot{},
		&PackagingRun{},
		&ReconciliationSnapshot{},
	)
}
