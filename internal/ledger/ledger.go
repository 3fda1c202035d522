// Package ledger implements the check-in/check-out state machine. Each
// vehicle is either checked out (no open parking record) or checked in
// (exactly one record with a null exit time); every transition runs in a
// single transaction that re-checks its precondition, with the partial
// unique indexes on parking_records as the storage-level backstop.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theLivingSofa/parking-management/internal/apperr"
	"github.com/theLivingSofa/parking-management/internal/directory"
	"github.com/theLivingSofa/parking-management/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hourSeconds = decimal.NewFromInt(3600)

type Ledger struct {
	db   *gorm.DB
	rate decimal.Decimal
	now  func() time.Time
}

// New creates a ledger charging rate per started hour. The rate is fixed
// for the lifetime of the ledger.
func New(db *gorm.DB, rate decimal.Decimal) *Ledger {
	return NewWithClock(db, rate, func() time.Time { return time.Now().UTC() })
}

// NewWithClock injects the clock used for entry and exit timestamps.
func NewWithClock(db *gorm.DB, rate decimal.Decimal, now func() time.Time) *Ledger {
	return &Ledger{db: db, rate: rate, now: now}
}

// CheckInResult describes a freshly opened session.
type CheckInResult struct {
	Vehicle *models.Vehicle
	Record  *models.ParkingRecord
	Spot    *models.ParkingSpot
}

// CheckOutResult describes a closed session with its computed fee.
type CheckOutResult struct {
	Vehicle *models.Vehicle
	Record  *models.ParkingRecord
	// DurationHours is rounded to 3 decimals for display; the fee is
	// computed from the exact duration, not from this value.
	DurationHours decimal.Decimal
	Fee           decimal.Decimal
}

// VehicleStatus reports whether a vehicle currently has an open session.
type VehicleStatus struct {
	Vehicle    *models.Vehicle
	OpenRecord *models.ParkingRecord // nil when checked out
}

// Occupant identifies who currently holds a spot.
type Occupant struct {
	LicensePlate     string    `json:"license_plate"`
	OwnerName        string    `json:"owner_name"`
	OwnerPhoneNumber string    `json:"owner_phone_number"`
	EntryTime        time.Time `json:"entry_time"`
}

// SpotStatus is one row of the spot overview.
type SpotStatus struct {
	models.ParkingSpot
	Occupant *Occupant `json:"occupant,omitempty"`
}

// CheckIn opens a session for the vehicle behind qrCode on the named
// spot. Fails when the vehicle already has an open session or the spot is
// taken; the record insert and the occupancy flip commit together.
func (l *Ledger) CheckIn(ctx context.Context, qrCode, spotNumber string) (*CheckInResult, error) {
	qrCode = strings.TrimSpace(qrCode)
	spotNumber = strings.TrimSpace(spotNumber)
	if qrCode == "" || spotNumber == "" {
		return nil, fmt.Errorf("qr code and spot number are required: %w", apperr.ErrValidation)
	}

	var res CheckInResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicle, err := directory.VehicleByQRCodeTx(tx, qrCode)
		if err != nil {
			return err
		}

		var open models.ParkingRecord
		err = tx.Where("vehicle_id = ? AND exit_time IS NULL", vehicle.ID).First(&open).Error
		if err == nil {
			return fmt.Errorf("vehicle '%s' is already checked in: %w", vehicle.LicensePlate, apperr.ErrAlreadyCheckedIn)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("query open record: %w", err)
		}

		var spot models.ParkingSpot
		if err := tx.Where("spot_number = ?", spotNumber).First(&spot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("parking spot '%s' not found: %w", spotNumber, apperr.ErrNotFound)
			}
			return fmt.Errorf("query spot: %w", err)
		}
		if spot.IsOccupied {
			return fmt.Errorf("parking spot '%s' is occupied: %w", spot.SpotNumber, apperr.ErrSpotOccupied)
		}

		record := models.ParkingRecord{
			VehicleID: vehicle.ID,
			SpotID:    spot.ID,
			EntryTime: l.now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return translateOpenIndexViolation(err)
		}
		if err := tx.Model(&spot).Update("is_occupied", true).Error; err != nil {
			return fmt.Errorf("occupy spot: %w", err)
		}
		spot.IsOccupied = true

		res = CheckInResult{Vehicle: vehicle, Record: &record, Spot: &spot}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckOut closes the vehicle's open session: exit time and fee are
// written together and the spot is released in the same transaction.
func (l *Ledger) CheckOut(ctx context.Context, qrCode string) (*CheckOutResult, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return nil, fmt.Errorf("qr code is required: %w", apperr.ErrValidation)
	}

	var res CheckOutResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicle, err := directory.VehicleByQRCodeTx(tx, qrCode)
		if err != nil {
			return err
		}

		var record models.ParkingRecord
		err = tx.Where("vehicle_id = ? AND exit_time IS NULL", vehicle.ID).First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("vehicle '%s' is not currently checked in: %w", vehicle.LicensePlate, apperr.ErrNotCheckedIn)
			}
			return fmt.Errorf("query open record: %w", err)
		}

		exitTime := l.now()
		durationHours, fee := l.computeFee(record.EntryTime, exitTime)

		if err := tx.Model(&record).Updates(map[string]interface{}{
			"exit_time": exitTime,
			"fee":       fee,
		}).Error; err != nil {
			return fmt.Errorf("close record: %w", err)
		}
		if err := tx.Model(&models.ParkingSpot{}).
			Where("id = ?", record.SpotID).
			Update("is_occupied", false).Error; err != nil {
			return fmt.Errorf("release spot: %w", err)
		}

		record.ExitTime = &exitTime
		record.Fee = &fee
		res = CheckOutResult{
			Vehicle:       vehicle,
			Record:        &record,
			DurationHours: durationHours.Round(3),
			Fee:           fee,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// computeFee bills every started hour in full: the exact decimal duration
// in hours is rounded up to a whole hour, multiplied by the rate and
// rounded to the cent.
func (l *Ledger) computeFee(entry, exit time.Time) (durationHours, fee decimal.Decimal) {
	seconds := decimal.NewFromInt(exit.Sub(entry).Nanoseconds()).Shift(-9)
	durationHours = seconds.Div(hourSeconds)
	hoursCharged := durationHours.Ceil()
	fee = hoursCharged.Mul(l.rate).Round(2)
	return durationHours, fee
}

// Status reports the current state of the vehicle behind qrCode without
// mutating anything.
func (l *Ledger) Status(ctx context.Context, qrCode string) (*VehicleStatus, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return nil, fmt.Errorf("qr code is required: %w", apperr.ErrValidation)
	}

	db := l.db.WithContext(ctx)
	vehicle, err := directory.VehicleByQRCodeTx(db, qrCode)
	if err != nil {
		return nil, err
	}

	var record models.ParkingRecord
	err = db.Where("vehicle_id = ? AND exit_time IS NULL", vehicle.ID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VehicleStatus{Vehicle: vehicle}, nil
		}
		return nil, fmt.Errorf("query open record: %w", err)
	}
	return &VehicleStatus{Vehicle: vehicle, OpenRecord: &record}, nil
}

// CreateSpot registers a named spot, initially unoccupied.
func (l *Ledger) CreateSpot(ctx context.Context, spotNumber string) (*models.ParkingSpot, error) {
	spotNumber = strings.TrimSpace(spotNumber)
	if spotNumber == "" {
		return nil, fmt.Errorf("spot number is required: %w", apperr.ErrValidation)
	}

	var spot models.ParkingSpot
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ParkingSpot{}).Where("spot_number = ?", spotNumber).Count(&count).Error; err != nil {
			return fmt.Errorf("check spot number: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("parking spot '%s' already exists: %w", spotNumber, apperr.ErrConflict)
		}
		spot = models.ParkingSpot{SpotNumber: spotNumber}
		if err := tx.Create(&spot).Error; err != nil {
			return fmt.Errorf("create spot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

// SpotOverview lists all spots with, for occupied ones, the current
// occupant resolved through its open record.
func (l *Ledger) SpotOverview(ctx context.Context) ([]SpotStatus, error) {
	db := l.db.WithContext(ctx)

	var spots []models.ParkingSpot
	if err := db.Order("spot_number").Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}

	var open []models.ParkingRecord
	if err := db.Preload("Vehicle.Owner").Where("exit_time IS NULL").Find(&open).Error; err != nil {
		return nil, fmt.Errorf("list open records: %w", err)
	}
	bySpot := make(map[uint]*models.ParkingRecord, len(open))
	for i := range open {
		bySpot[open[i].SpotID] = &open[i]
	}

	out := make([]SpotStatus, 0, len(spots))
	for _, spot := range spots {
		status := SpotStatus{ParkingSpot: spot}
		if record, ok := bySpot[spot.ID]; ok {
			occupant := Occupant{
				LicensePlate:     record.Vehicle.LicensePlate,
				OwnerName:        "N/A",
				OwnerPhoneNumber: "N/A",
				EntryTime:        record.EntryTime,
			}
			if record.Vehicle.Owner != nil {
				occupant.OwnerName = record.Vehicle.Owner.Name
				occupant.OwnerPhoneNumber = record.Vehicle.Owner.PhoneNumber
			}
			status.Occupant = &occupant
		}
		out = append(out, status)
	}
	return out, nil
}

// translateOpenIndexViolation maps a violation of the open-record partial
// indexes back onto the precondition it enforces, so a losing concurrent
// check-in surfaces as a conflict instead of a raw storage error.
func translateOpenIndexViolation(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "parking_records.vehicle_id"):
		return fmt.Errorf("concurrent check-in rejected: %w", apperr.ErrAlreadyCheckedIn)
	case strings.Contains(msg, "parking_records.spot_id"):
		return fmt.Errorf("concurrent check-in rejected: %w", apperr.ErrSpotOccupied)
	}
	return fmt.Errorf("create parking record: %w", err)
}
