package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	profileDomain "github.com/haulbuddy/service-marketplace/internal/domain/profile"
)

// ProfileDTO is the response representation of a user profile.
type ProfileDTO struct {
	UID                    string                                  `json:"uid"`
	Name                   string                                  `json:"name"`
	Email                  string                                  `json:"email"`
	Phone                  string                                  `json:"phone,omitempty"`
	Role                   string                                  `json:"role"`
	ProfilePicture         string                                  `json:"profile_picture,omitempty"`
	HasCompletedOnboarding bool                                    `json:"has_completed_onboarding"`
	Vehicles               []string                                `json:"vehicles,omitempty"`
	BusinessName           string                                  `json:"business_name,omitempty"`
	AvailableDays          *profileDomain.WeekdayAvailability      `json:"available_days,omitempty"`
	AvailableTimeSlots     *profileDomain.TimeSlotAvailability     `json:"available_time_slots,omitempty"`
	NotificationPrefs      *profileDomain.NotificationPreferences  `json:"notification_preferences,omitempty"`
	SavedAddresses         *profileDomain.SavedAddresses           `json:"saved_addresses,omitempty"`
	CreatedAt              time.Time                               `json:"created_at"`
	UpdatedAt              time.Time                               `json:"updated_at"`
}

// UpdateProfileRequest holds the fields a user may change on their profile.
// Empty strings and nil pointers leave the stored value untouched.
type UpdateProfileRequest struct {
	Name               string                                  `json:"name"`
	Phone              string                                  `json:"phone"`
	ProfilePicture     string                                  `json:"profile_picture"`
	BusinessName       string                                  `json:"business_name"`
	AvailableDays      *profileDomain.WeekdayAvailability      `json:"available_days"`
	AvailableTimeSlots *profileDomain.TimeSlotAvailability     `json:"available_time_slots"`
	NotificationPrefs  *profileDomain.NotificationPreferences  `json:"notification_preferences"`
	SavedAddresses     *profileDomain.SavedAddresses           `json:"saved_addresses"`
}

// ProfileService is the application service for user profiles.
type ProfileService struct {
	repo   profileDomain.ProfileRepository
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo profileDomain.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// CreateProfile creates the marketplace profile for a freshly registered
// account. New profiles start as customers with onboarding incomplete.
func (s *ProfileService) CreateProfile(ctx context.Context, uid, name, email string, role profileDomain.Role) (*ProfileDTO, error) {
	p, err := profileDomain.NewProfile(uid, name, email, role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("profile created",
		zap.String("uid", uid),
		zap.String("role", p.Role().String()),
	)

	result := toProfileDTO(p)
	return &result, nil
}

// GetProfile retrieves a profile by UID.
func (s *ProfileService) GetProfile(ctx context.Context, uid string) (*ProfileDTO, error) {
	p, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	result := toProfileDTO(p)
	return &result, nil
}

// UpdateProfile applies the given partial update to the user's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*ProfileDTO, error) {
	p, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	p.Apply(profileDomain.Updates{
		Name:               req.Name,
		Phone:              req.Phone,
		ProfilePicture:     req.ProfilePicture,
		BusinessName:       req.BusinessName,
		AvailableDays:      req.AvailableDays,
		AvailableTimeSlots: req.AvailableTimeSlots,
		NotificationPrefs:  req.NotificationPrefs,
		SavedAddresses:     req.SavedAddresses,
	})

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	result := toProfileDTO(p)
	return &result, nil
}

func toProfileDTO(p *profileDomain.Profile) ProfileDTO {
	return ProfileDTO{
		UID:                    p.UID(),
		Name:                   p.Name(),
		Email:                  p.Email(),
		Phone:                  p.Phone(),
		Role:                   p.Role().String(),
		ProfilePicture:         p.ProfilePicture(),
		HasCompletedOnboarding: p.HasCompletedOnboarding(),
		Vehicles:               p.Vehicles(),
		BusinessName:           p.BusinessName(),
		AvailableDays:          p.AvailableDays(),
		AvailableTimeSlots:     p.AvailableTimeSlots(),
		NotificationPrefs:      p.NotificationPrefs(),
		SavedAddresses:         p.SavedAddresses(),
		CreatedAt:              p.CreatedAt(),
		UpdatedAt:              p.UpdatedAt(),
	}
}
