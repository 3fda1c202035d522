package database

import (
	"fmt"

	"github.com/theLivingSofa/parking-management/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models, then
// installs the partial unique indexes that guarantee at most one open
// parking record per vehicle and per spot. The indexes are the storage
// backstop for concurrent check-ins: if two transactions both pass the
// application-level precondition, the second commit fails here.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Owner{},
		&models.Vehicle{},
		&models.ParkingSpot{},
		&models.ParkingRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_parking_records_open_vehicle
		 ON parking_records (vehicle_id) WHERE exit_time IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_parking_records_open_spot
		 ON parking_records (spot_id) WHERE exit_time IS NULL`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}
