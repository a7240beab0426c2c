package vehicle

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Vehicle is the aggregate root for a truck listing.
type Vehicle struct {
	id           string
	ownerID      string
	vehicleType  VehicleType
	make         string
	model        string
	year         string
	licensePlate string
	capacity     string
	photos       PhotoSet

	hourlyRate      float64
	offerAssistance bool
	assistanceRate  float64

	isActive bool

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// Info carries the descriptive fields collected by the vehicle-info step.
type Info struct {
	Type         string `json:"type"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         string `json:"year"`
	LicensePlate string `json:"license_plate"`
	Capacity     string `json:"capacity"`
}

// Validate checks the vehicle-info step for completeness.
func (i Info) Validate() error {
	if i.Type == "" {
		return domain.NewValidationError("please select a vehicle type")
	}
	if !VehicleType(i.Type).IsValid() {
		return domain.NewValidationError("invalid vehicle type: " + i.Type)
	}
	if i.Make == "" {
		return domain.NewValidationError("please enter the vehicle make")
	}
	if i.Model == "" {
		return domain.NewValidationError("please enter the vehicle model")
	}
	if i.Year == "" {
		return domain.NewValidationError("please enter the vehicle year")
	}
	if !yearPattern.MatchString(i.Year) {
		return domain.NewValidationError("please enter a valid 4-digit year")
	}
	if i.LicensePlate == "" {
		return domain.NewValidationError("please enter the license plate number")
	}
	if i.Capacity == "" {
		return domain.NewValidationError("please select a cargo capacity")
	}
	return nil
}

// Pricing carries the rate fields collected by the pricing step.
type Pricing struct {
	HourlyRate      float64 `json:"hourly_rate"`
	OfferAssistance bool    `json:"offer_assistance"`
	AssistanceRate  float64 `json:"assistance_rate"`
}

// Validate checks the pricing step.
func (p Pricing) Validate() error {
	if p.HourlyRate <= 0 {
		return domain.NewValidationError("please enter a valid hourly rate greater than 0")
	}
	if p.OfferAssistance && p.AssistanceRate <= 0 {
		return domain.NewValidationError("please enter an assistance rate")
	}
	return nil
}

// NewVehicle creates an active listing with empty photo slots.
func NewVehicle(ownerID string, info Info, pricing Pricing) (*Vehicle, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if err := pricing.Validate(); err != nil {
		return nil, err
	}

	assistanceRate := 0.0
	if pricing.OfferAssistance {
		assistanceRate = pricing.AssistanceRate
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:              uuid.New().String(),
		ownerID:         ownerID,
		vehicleType:     VehicleType(info.Type),
		make:            info.Make,
		model:           info.Model,
		year:            info.Year,
		licensePlate:    info.LicensePlate,
		capacity:        info.Capacity,
		hourlyRate:      pricing.HourlyRate,
		offerAssistance: pricing.OfferAssistance,
		assistanceRate:  assistanceRate,
		isActive:        true,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(
	id, ownerID string,
	vehicleType VehicleType,
	make, model, year, licensePlate, capacity string,
	photos PhotoSet,
	hourlyRate float64,
	offerAssistance bool,
	assistanceRate float64,
	isActive bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:              id,
		ownerID:         ownerID,
		vehicleType:     vehicleType,
		make:            make,
		model:           model,
		year:            year,
		licensePlate:    licensePlate,
		capacity:        capacity,
		photos:          photos,
		hourlyRate:      hourlyRate,
		offerAssistance: offerAssistance,
		assistanceRate:  assistanceRate,
		isActive:        isActive,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

func (v *Vehicle) ID() string               { return v.id }
func (v *Vehicle) OwnerID() string          { return v.ownerID }
func (v *Vehicle) Type() VehicleType        { return v.vehicleType }
func (v *Vehicle) Make() string             { return v.make }
func (v *Vehicle) Model() string            { return v.model }
func (v *Vehicle) Year() string             { return v.year }
func (v *Vehicle) LicensePlate() string     { return v.licensePlate }
func (v *Vehicle) Capacity() string         { return v.capacity }
func (v *Vehicle) Photos() PhotoSet         { return v.photos }
func (v *Vehicle) HourlyRate() float64      { return v.hourlyRate }
func (v *Vehicle) OfferAssistance() bool    { return v.offerAssistance }
func (v *Vehicle) AssistanceRate() float64  { return v.assistanceRate }
func (v *Vehicle) IsActive() bool           { return v.isActive }
func (v *Vehicle) Version() int64           { return v.version }
func (v *Vehicle) CreatedAt() time.Time     { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time     { return v.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the listing belongs to the given owner.
func (v *Vehicle) IsOwnedBy(ownerID string) bool {
	return v.ownerID == ownerID
}

// SetPhoto stores a photo URL in the named slot.
func (v *Vehicle) SetPhoto(slot PhotoSlot, url string) error {
	if url == "" {
		return domain.NewValidationError("photo URL is required")
	}
	if err := v.photos.Set(slot, url); err != nil {
		return domain.NewValidationError(err.Error())
	}
	v.updatedAt = time.Now().UTC()
	return nil
}

// UpdateRates changes the listing's pricing.
func (v *Vehicle) UpdateRates(pricing Pricing) error {
	if err := pricing.Validate(); err != nil {
		return err
	}
	v.hourlyRate = pricing.HourlyRate
	v.offerAssistance = pricing.OfferAssistance
	if pricing.OfferAssistance {
		v.assistanceRate = pricing.AssistanceRate
	} else {
		v.assistanceRate = 0
	}
	v.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate soft-removes the listing from the marketplace. There is no
// hard delete.
func (v *Vehicle) Deactivate() {
	v.isActive = false
	v.updatedAt = time.Now().UTC()
}

// Activate returns the listing to the marketplace.
func (v *Vehicle) Activate() {
	v.isActive = true
	v.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (v *Vehicle) IncrementVersion() {
	v.version++
	v.updatedAt = time.Now().UTC()
}
