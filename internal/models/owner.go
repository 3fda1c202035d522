package models

// Owner represents a vehicle owner. The phone number is the unique
// business key used to link vehicles at registration time.
type Owner struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	PhoneNumber string `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`

	Vehicles []Vehicle `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
}
