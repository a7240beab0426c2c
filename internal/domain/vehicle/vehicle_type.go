package vehicle

import "fmt"

// VehicleType represents the class of truck listed on the marketplace.
type VehicleType string

const (
	TypePickup   VehicleType = "pickup"
	TypeVan      VehicleType = "van"
	TypeBoxTruck VehicleType = "box truck"
	TypeFlatbed  VehicleType = "flatbed"
	TypeOther    VehicleType = "other"
)

// IsValid returns true if the vehicle type is recognized.
func (t VehicleType) IsValid() bool {
	switch t {
	case TypePickup, TypeVan, TypeBoxTruck, TypeFlatbed, TypeOther:
		return true
	}
	return false
}

// ParseVehicleType converts a string to a VehicleType, returning an error if invalid.
func ParseVehicleType(s string) (VehicleType, error) {
	t := VehicleType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid vehicle type: %s", s)
	}
	return t, nil
}

// PhotoSlot names one of the fixed photo positions on a listing.
type PhotoSlot string

const (
	PhotoSlotFront    PhotoSlot = "front"
	PhotoSlotBack     PhotoSlot = "back"
	PhotoSlotSide     PhotoSlot = "side"
	PhotoSlotCargo    PhotoSlot = "cargo"
	PhotoSlotInterior PhotoSlot = "interior"
)

// IsValid returns true if the photo slot is recognized.
func (s PhotoSlot) IsValid() bool {
	switch s {
	case PhotoSlotFront, PhotoSlotBack, PhotoSlotSide, PhotoSlotCargo, PhotoSlotInterior:
		return true
	}
	return false
}

// PhotoSet holds the five named photo slots of a listing. Empty string means
// the slot has not been filled yet.
type PhotoSet struct {
	Front    string `json:"front,omitempty"`
	Back     string `json:"back,omitempty"`
	Side     string `json:"side,omitempty"`
	Cargo    string `json:"cargo,omitempty"`
	Interior string `json:"interior,omitempty"`
}

// URL returns the photo URL stored in the given slot.
func (p PhotoSet) URL(slot PhotoSlot) string {
	switch slot {
	case PhotoSlotFront:
		return p.Front
	case PhotoSlotBack:
		return p.Back
	case PhotoSlotSide:
		return p.Side
	case PhotoSlotCargo:
		return p.Cargo
	case PhotoSlotInterior:
		return p.Interior
	}
	return ""
}

// Set stores a photo URL in the given slot.
func (p *PhotoSet) Set(slot PhotoSlot, url string) error {
	switch slot {
	case PhotoSlotFront:
		p.Front = url
	case PhotoSlotBack:
		p.Back = url
	case PhotoSlotSide:
		p.Side = url
	case PhotoSlotCargo:
		p.Cargo = url
	case PhotoSlotInterior:
		p.Interior = url
	default:
		return fmt.Errorf("invalid photo slot: %s", slot)
	}
	return nil
}

// Count returns the number of filled slots.
func (p PhotoSet) Count() int {
	count := 0
	for _, url := range []string{p.Front, p.Back, p.Side, p.Cargo, p.Interior} {
		if url != "" {
			count++
		}
	}
	return count
}
