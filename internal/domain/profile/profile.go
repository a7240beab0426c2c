package profile

import (
	"time"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
)

// Profile is the aggregate root for a marketplace user. It is keyed by the
// opaque UID assigned by the identity provider, not a locally generated ID.
// Owner- and customer-specific fields live on the same aggregate; which set
// is populated depends on the role.
type Profile struct {
	uid            string
	name           string
	email          string
	phone          string
	role           Role
	profilePicture string

	hasCompletedOnboarding bool

	// Owner fields.
	vehicles           []string
	businessName       string
	availableDays      *WeekdayAvailability
	availableTimeSlots *TimeSlotAvailability

	// Customer fields.
	notificationPrefs *NotificationPreferences
	savedAddresses    *SavedAddresses

	createdAt time.Time
	updatedAt time.Time
}

// NewProfile creates a profile for a freshly registered user. Onboarding
// starts incomplete; an empty role defaults to customer.
func NewProfile(uid, name, email string, role Role) (*Profile, error) {
	if uid == "" {
		return nil, domain.NewValidationError("user ID is required")
	}
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	if role == "" {
		role = RoleCustomer
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("invalid role: " + string(role))
	}

	now := time.Now().UTC()
	return &Profile{
		uid:       uid,
		name:      name,
		email:     email,
		role:      role,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Profile from persistence data (no validation).
func Reconstruct(
	uid, name, email, phone string,
	role Role,
	profilePicture string,
	hasCompletedOnboarding bool,
	vehicles []string,
	businessName string,
	availableDays *WeekdayAvailability,
	availableTimeSlots *TimeSlotAvailability,
	notificationPrefs *NotificationPreferences,
	savedAddresses *SavedAddresses,
	createdAt, updatedAt time.Time,
) *Profile {
	return &Profile{
		uid:                    uid,
		name:                   name,
		email:                  email,
		phone:                  phone,
		role:                   role,
		profilePicture:         profilePicture,
		hasCompletedOnboarding: hasCompletedOnboarding,
		vehicles:               vehicles,
		businessName:           businessName,
		availableDays:          availableDays,
		availableTimeSlots:     availableTimeSlots,
		notificationPrefs:      notificationPrefs,
		savedAddresses:         savedAddresses,
		createdAt:              createdAt,
		updatedAt:              updatedAt,
	}
}

// --- Getters ---

func (p *Profile) UID() string            { return p.uid }
func (p *Profile) Name() string           { return p.name }
func (p *Profile) Email() string          { return p.email }
func (p *Profile) Phone() string          { return p.phone }
func (p *Profile) Role() Role             { return p.role }
func (p *Profile) ProfilePicture() string { return p.profilePicture }
func (p *Profile) BusinessName() string   { return p.businessName }
func (p *Profile) CreatedAt() time.Time   { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time   { return p.updatedAt }

// HasCompletedOnboarding returns true once the user finished their wizard.
func (p *Profile) HasCompletedOnboarding() bool { return p.hasCompletedOnboarding }

// Vehicles returns the IDs of vehicles listed by this owner.
func (p *Profile) Vehicles() []string { return p.vehicles }

// AvailableDays returns the owner's weekly availability, or nil if unset.
func (p *Profile) AvailableDays() *WeekdayAvailability { return p.availableDays }

// AvailableTimeSlots returns the owner's daily availability, or nil if unset.
func (p *Profile) AvailableTimeSlots() *TimeSlotAvailability { return p.availableTimeSlots }

// NotificationPrefs returns the customer's channel preferences, or nil if unset.
func (p *Profile) NotificationPrefs() *NotificationPreferences { return p.notificationPrefs }

// SavedAddresses returns the customer's saved addresses, or nil if unset.
func (p *Profile) SavedAddresses() *SavedAddresses { return p.savedAddresses }

// --- Behavior ---

// Updates carries a partial profile edit. Nil or zero-valued fields are
// left untouched.
type Updates struct {
	Name               string
	Phone              string
	ProfilePicture     string
	Role               Role
	BusinessName       string
	AvailableDays      *WeekdayAvailability
	AvailableTimeSlots *TimeSlotAvailability
	NotificationPrefs  *NotificationPreferences
	SavedAddresses     *SavedAddresses
}

// Apply merges a partial update into the profile.
func (p *Profile) Apply(u Updates) {
	if u.Name != "" {
		p.name = u.Name
	}
	if u.Phone != "" {
		p.phone = u.Phone
	}
	if u.ProfilePicture != "" {
		p.profilePicture = u.ProfilePicture
	}
	if u.Role != "" && u.Role.IsValid() {
		p.role = u.Role
	}
	if u.BusinessName != "" {
		p.businessName = u.BusinessName
	}
	if u.AvailableDays != nil {
		p.availableDays = u.AvailableDays
	}
	if u.AvailableTimeSlots != nil {
		p.availableTimeSlots = u.AvailableTimeSlots
	}
	if u.NotificationPrefs != nil {
		p.notificationPrefs = u.NotificationPrefs
	}
	if u.SavedAddresses != nil {
		p.savedAddresses = u.SavedAddresses
	}
	p.updatedAt = time.Now().UTC()
}

// CompleteOnboarding marks the onboarding flag. The flag is monotonic:
// there is no way to reset it.
func (p *Profile) CompleteOnboarding() {
	p.hasCompletedOnboarding = true
	p.updatedAt = time.Now().UTC()
}

// AddVehicle appends a vehicle ID to the owner's listing set.
func (p *Profile) AddVehicle(vehicleID string) {
	for _, id := range p.vehicles {
		if id == vehicleID {
			return
		}
	}
	p.vehicles = append(p.vehicles, vehicleID)
	p.updatedAt = time.Now().UTC()
}
