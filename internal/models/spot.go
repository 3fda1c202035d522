package models

// ParkingSpot is a named physical parking spot. IsOccupied is derived
// state: it must always agree with "an open ParkingRecord references this
// spot" and is only flipped inside the same transaction that creates or
// closes that record.
type ParkingSpot struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	SpotNumber string `gorm:"size:10;uniqueIndex;not null" json:"spot_number"`
	IsOccupied bool   `gorm:"not null;default:false" json:"is_occupied"`
}
