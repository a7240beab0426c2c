package booking

import "time"

// Sentinel references written when a booking is submitted before the customer
// has picked an owner or vehicle. Downstream consumers treat them as
// "unassigned"; referential integrity is not enforced at write time.
const (
	DefaultOwnerID   = "owner-default"
	DefaultVehicleID = "vehicle-default"
)

// FallbackPickupTime is substituted for a missing or invalid pickup time so
// that an unparseable timestamp is never persisted. The customer's intended
// time is lost in that case; the fixed constant keeps the failure visible
// instead of silently stamping "now".
var FallbackPickupTime = time.Date(2025, time.May, 15, 14, 0, 0, 0, time.UTC)

// Form is the partially-filled booking request accumulated by the customer
// flow. Every field is optional; Normalize fills the gaps.
type Form struct {
	CargoDescription   string    `json:"cargo_description"`
	PickupAddress      string    `json:"pickup_address"`
	DestinationAddress string    `json:"destination_address"`
	PickupDateTime     time.Time `json:"pickup_date_time"`
	EstimatedHours     float64   `json:"estimated_hours"`
	NeedsAssistance    bool      `json:"needs_assistance"`
	RidingAlong        bool      `json:"riding_along"`
	OwnerID            string    `json:"owner_id"`
	VehicleID          string    `json:"vehicle_id"`
	Notes              string    `json:"notes"`
}

// Normalize applies the submission defaults, field by field: absent owner and
// vehicle references become the sentinel IDs, a missing duration becomes
// DefaultEstimatedHours, and a zero pickup time becomes FallbackPickupTime.
// Text fields pass through; absent means empty string.
func (f Form) Normalize() Form {
	if f.OwnerID == "" {
		f.OwnerID = DefaultOwnerID
	}
	if f.VehicleID == "" {
		f.VehicleID = DefaultVehicleID
	}
	if f.EstimatedHours == 0 {
		f.EstimatedHours = DefaultEstimatedHours
	}
	if f.PickupDateTime.IsZero() {
		f.PickupDateTime = FallbackPickupTime
	}
	return f
}
