// Package directory holds the owner directory and the vehicle registry:
// who owns what, keyed by phone number and license plate, plus the
// registration flow that binds a vehicle to its owner and QR token.
package directory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theLivingSofa/parking-management/internal/apperr"
	"github.com/theLivingSofa/parking-management/internal/models"
	"github.com/theLivingSofa/parking-management/internal/qrcode"

	"gorm.io/gorm"
)

type Directory struct {
	db  *gorm.DB
	gen *qrcode.Generator
}

func New(db *gorm.DB, gen *qrcode.Generator) *Directory {
	return &Directory{db: db, gen: gen}
}

// NormalizePlate is the canonical plate form used for storage and
// comparison everywhere: uppercased with all whitespace removed, so
// "abc 123" and "ABC123" are the same plate.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}

// ---------- owners ----------

// OwnerByPhone finds an owner by exact match on the trimmed phone number.
// An empty phone never hits the database.
func (d *Directory) OwnerByPhone(ctx context.Context, phone string) (*models.Owner, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("owner phone number is empty: %w", apperr.ErrNotFound)
	}
	return ownerByPhone(d.db.WithContext(ctx), phone)
}

func ownerByPhone(tx *gorm.DB, phone string) (*models.Owner, error) {
	var owner models.Owner
	if err := tx.Where("phone_number = ?", phone).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("owner with phone '%s' not found: %w", phone, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("query owner: %w", err)
	}
	return &owner, nil
}

// CreateOwner registers a new owner. Name and phone are required; the
// phone number must not already be registered.
func (d *Directory) CreateOwner(ctx context.Context, name, phone string) (*models.Owner, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("name and phone number are required: %w", apperr.ErrValidation)
	}

	var owner models.Owner
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Owner{}).Where("phone_number = ?", phone).Count(&count).Error; err != nil {
			return fmt.Errorf("check owner phone: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("owner with phone '%s' already registered: %w", phone, apperr.ErrConflict)
		}
		owner = models.Owner{Name: name, PhoneNumber: phone}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("create owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// GetOrCreateOwner returns the owner registered under phone, creating one
// when absent. The create path requires a non-empty name. Kept for the
// implicit-owner-creation registration policy; the strict policy routed
// by default never calls it.
func (d *Directory) GetOrCreateOwner(ctx context.Context, name, phone string) (*models.Owner, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone number is required: %w", apperr.ErrValidation)
	}
	owner, err := d.OwnerByPhone(ctx, phone)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return d.CreateOwner(ctx, name, phone)
}

// ---------- vehicles ----------

// VehicleByPlate finds a vehicle by case-insensitive plate match.
func (d *Directory) VehicleByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	normalized := NormalizePlate(plate)
	if normalized == "" {
		return nil, fmt.Errorf("license plate is empty: %w", apperr.ErrNotFound)
	}
	return vehicleByPlate(d.db.WithContext(ctx), normalized)
}

func vehicleByPlate(tx *gorm.DB, normalized string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := tx.Where("upper(license_plate) = ?", normalized).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("vehicle '%s' not found: %w", normalized, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("query vehicle: %w", err)
	}
	return &vehicle, nil
}

// VehicleByQRCode finds a vehicle by its token with the owner eagerly
// loaded; the rest of the system never handles a vehicle without its
// owner in hand.
func (d *Directory) VehicleByQRCode(ctx context.Context, token string) (*models.Vehicle, error) {
	return VehicleByQRCodeTx(d.db.WithContext(ctx), token)
}

// VehicleByQRCodeTx is the same lookup bound to a caller-owned
// transaction, so ledger transitions can resolve the vehicle inside the
// transaction that re-checks their preconditions.
func VehicleByQRCodeTx(tx *gorm.DB, token string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := tx.Preload("Owner").Where("qr_code = ?", token).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("vehicle with scanned qr code not found: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("query vehicle by qr code: %w", err)
	}
	return &vehicle, nil
}

// RegisterVehicle registers a vehicle under an existing owner's phone
// number. Owner resolution, token generation, the collision check and the
// insert run in one transaction; the PNG artifact is removed again when
// the transaction does not commit.
func (d *Directory) RegisterVehicle(ctx context.Context, plate, ownerPhone string) (*models.Vehicle, string, error) {
	normalized := NormalizePlate(plate)
	ownerPhone = strings.TrimSpace(ownerPhone)
	if normalized == "" || ownerPhone == "" {
		return nil, "", fmt.Errorf("license plate and owner phone number are required: %w", apperr.ErrValidation)
	}

	var (
		vehicle      models.Vehicle
		artifactPath string
	)
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Vehicle{}).Where("upper(license_plate) = ?", normalized).Count(&count).Error; err != nil {
			return fmt.Errorf("check plate: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("vehicle '%s' already registered: %w", normalized, apperr.ErrConflict)
		}

		owner, err := ownerByPhone(tx, ownerPhone)
		if err != nil {
			return err
		}

		token, path, err := d.gen.Generate(normalized)
		if err != nil {
			return err
		}
		artifactPath = path

		// collisions are effectively impossible, but a duplicate token
		// must never be stored
		if err := tx.Model(&models.Vehicle{}).Where("qr_code = ?", token).Count(&count).Error; err != nil {
			return fmt.Errorf("check qr code: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("qr code collision for '%s': %w", normalized, apperr.ErrGeneration)
		}

		vehicle = models.Vehicle{
			LicensePlate: normalized,
			QRCode:       token,
			OwnerID:      &owner.ID,
			Owner:        owner,
		}
		if err := tx.Omit("Owner").Create(&vehicle).Error; err != nil {
			return fmt.Errorf("create vehicle: %w", err)
		}
		return nil
	})
	if err != nil {
		if artifactPath != "" {
			_ = os.Remove(artifactPath)
		}
		return nil, "", err
	}
	return &vehicle, artifactPath, nil
}
