package models

// Vehicle represents a registered vehicle. The license plate is stored
// uppercase and compared case-insensitively; the QR code is the opaque
// token generated once at registration and never changed.
type Vehicle struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	LicensePlate string `gorm:"size:20;uniqueIndex;not null" json:"license_plate"`
	QRCode       string `gorm:"size:64;uniqueIndex;not null" json:"qr_code"`

	// Nullable so that deleting an owner orphans the vehicle instead of
	// deleting it.
	OwnerID *uint  `gorm:"index" json:"owner_id,omitempty"`
	Owner   *Owner `json:"owner,omitempty"`

	ParkingRecords []ParkingRecord `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"-"`
}
