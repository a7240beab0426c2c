package application

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	profileDomain "github.com/haulbuddy/service-marketplace/internal/domain/profile"
	vehicleDomain "github.com/haulbuddy/service-marketplace/internal/domain/vehicle"
)

// PhotoUpload is one vehicle photo submitted during owner onboarding.
type PhotoUpload struct {
	Slot        vehicleDomain.PhotoSlot
	Data        []byte
	ContentType string
}

// OwnerOnboardingRequest bundles everything collected by the owner
// onboarding flow: the vehicle, its photos, pricing and availability.
type OwnerOnboardingRequest struct {
	Vehicle            CreateVehicleRequest
	Photos             []PhotoUpload
	AvailableDays      profileDomain.WeekdayAvailability
	AvailableTimeSlots profileDomain.TimeSlotAvailability
}

// CustomerOnboardingRequest holds the customer onboarding form.
type CustomerOnboardingRequest struct {
	Name              string                                 `json:"name"`
	Phone             string                                 `json:"phone"`
	ProfilePicture    string                                 `json:"profile_picture"`
	NotificationPrefs *profileDomain.NotificationPreferences `json:"notification_preferences"`
	SavedAddresses    *profileDomain.SavedAddresses          `json:"saved_addresses"`
}

// EarningsEstimate is the weekly earnings range shown at the end of owner
// onboarding.
type EarningsEstimate struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MinOnboardingPhotos is the number of photos owner onboarding requires.
const MinOnboardingPhotos = 3

// Assumptions behind the earnings estimate.
const (
	averageTripsPerWeek = 3
	averageHoursPerTrip = 2
)

// OnboardingService runs the multi-step flows that turn a fresh account into
// a working customer or owner profile.
type OnboardingService struct {
	profiles profileDomain.ProfileRepository
	vehicles *VehicleService
	logger   *zap.Logger
}

// NewOnboardingService creates a new OnboardingService.
func NewOnboardingService(profiles profileDomain.ProfileRepository, vehicles *VehicleService, logger *zap.Logger) *OnboardingService {
	return &OnboardingService{profiles: profiles, vehicles: vehicles, logger: logger}
}

// CompleteOwnerOnboarding finalizes owner onboarding: it lists the vehicle,
// uploads the photos concurrently, then promotes the profile to owner with
// the submitted availability and marks onboarding complete. Returns the new
// vehicle's ID.
func (s *OnboardingService) CompleteOwnerOnboarding(ctx context.Context, uid string, req OwnerOnboardingRequest) (string, error) {
	if err := validateOwnerOnboarding(req); err != nil {
		return "", err
	}

	vehicle, err := s.vehicles.CreateVehicle(ctx, uid, req.Vehicle)
	if err != nil {
		return "", err
	}

	if _, err := s.vehicles.UploadVehiclePhotos(ctx, vehicle.ID, uid, req.Photos); err != nil {
		return "", err
	}

	p, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		return "", err
	}

	availableDays := req.AvailableDays
	availableTimeSlots := req.AvailableTimeSlots
	p.Apply(profileDomain.Updates{
		Role:               profileDomain.RoleOwner,
		AvailableDays:      &availableDays,
		AvailableTimeSlots: &availableTimeSlots,
	})
	p.CompleteOnboarding()

	if err := s.profiles.Update(ctx, p); err != nil {
		return "", err
	}

	s.logger.Info("owner onboarding complete",
		zap.String("uid", uid),
		zap.String("vehicle_id", vehicle.ID),
		zap.Int("photos", len(req.Photos)),
	)
	return vehicle.ID, nil
}

// CompleteCustomerOnboarding finalizes customer onboarding: profile details,
// preferences, and the completion flag.
func (s *OnboardingService) CompleteCustomerOnboarding(ctx context.Context, uid string, req CustomerOnboardingRequest) error {
	p, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		return err
	}

	p.Apply(profileDomain.Updates{
		Name:              req.Name,
		Phone:             req.Phone,
		ProfilePicture:    req.ProfilePicture,
		Role:              profileDomain.RoleCustomer,
		NotificationPrefs: req.NotificationPrefs,
		SavedAddresses:    req.SavedAddresses,
	})
	p.CompleteOnboarding()

	if err := s.profiles.Update(ctx, p); err != nil {
		return err
	}

	s.logger.Info("customer onboarding complete", zap.String("uid", uid))
	return nil
}

// HasCompletedOnboarding reports whether the user finished onboarding.
// A missing profile counts as not onboarded rather than an error.
func (s *OnboardingService) HasCompletedOnboarding(ctx context.Context, uid string) (bool, error) {
	p, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.HasCompletedOnboarding(), nil
}

// CalculatePotentialEarnings estimates an owner's weekly earnings range from
// their rates and availability: the hourly (and, if offered, assistance)
// rate over an assumed three two-hour trips a week, scaled by how many days
// they work. The upper bound is 1.5x the base estimate.
func CalculatePotentialEarnings(pricing vehicleDomain.Pricing, days profileDomain.WeekdayAvailability) EarningsEstimate {
	daysMultiplier := float64(days.CountSelected()) / 7

	baseEarnings := pricing.HourlyRate * averageHoursPerTrip * averageTripsPerWeek
	assistanceEarnings := 0.0
	if pricing.OfferAssistance {
		assistanceEarnings = pricing.AssistanceRate * averageHoursPerTrip * averageTripsPerWeek
	}
	totalPotential := (baseEarnings + assistanceEarnings) * daysMultiplier

	return EarningsEstimate{
		Min: math.Round(totalPotential),
		Max: math.Round(totalPotential * 1.5),
	}
}

func validateOwnerOnboarding(req OwnerOnboardingRequest) error {
	if len(req.Photos) < MinOnboardingPhotos {
		return domain.NewValidationError("Please add at least 3 photos of your vehicle")
	}
	for _, photo := range req.Photos {
		if !photo.Slot.IsValid() {
			return domain.NewValidationError("Unknown photo slot")
		}
	}
	if req.AvailableDays.CountSelected() == 0 {
		return domain.NewValidationError("Please select at least one available day")
	}
	if req.AvailableTimeSlots.CountSelected() == 0 {
		return domain.NewValidationError("Please select at least one time slot")
	}
	return nil
}
