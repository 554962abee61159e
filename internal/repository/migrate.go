package repository

import "gorm.io/gorm"

// Migrate applies the schema for every persisted record type. The row
// models live here so the schema stays next to the queries that use it.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&staffUserModel{},
		&resourceModel{},
		&bookingRequestModel{},
		&settlementLineItemModel{},
		&resourceHoldModel{},
		&holdResourceLinkModel{},
	)
}
