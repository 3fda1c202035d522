package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParkingRecord is one check-in-to-check-out interval for a vehicle.
// A nil ExitTime means the session is still open; ExitTime and Fee are
// written together, exactly once, at checkout. Records are historical and
// never deleted while the vehicle exists.
type ParkingRecord struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	VehicleID uint             `gorm:"index;not null" json:"vehicle_id"`
	SpotID    uint             `gorm:"index;not null" json:"spot_id"`
	EntryTime time.Time        `gorm:"index;not null" json:"entry_time"`
	ExitTime  *time.Time       `gorm:"index" json:"exit_time,omitempty"`
	Fee       *decimal.Decimal `gorm:"type:decimal(10,2)" json:"fee,omitempty"`

	Vehicle Vehicle     `json:"-"`
	Spot    ParkingSpot `json:"-"`
}
