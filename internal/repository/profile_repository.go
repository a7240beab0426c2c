package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	profileDomain "github.com/haulbuddy/service-marketplace/internal/domain/profile"
)

// ProfileModel is the GORM model for the users table.
type ProfileModel struct {
	UID                    string          `gorm:"primaryKey;size:64"`
	Name                   string          `gorm:"size:200"`
	Email                  string          `gorm:"index;not null;size:320"`
	Phone                  string          `gorm:"size:30"`
	Role                   string          `gorm:"not null;size:20"`
	ProfilePicture         string          `gorm:"size:500"`
	HasCompletedOnboarding bool            `gorm:"not null;default:false"`
	Vehicles               json.RawMessage `gorm:"type:jsonb"`
	BusinessName           string          `gorm:"size:200"`
	AvailableDays          json.RawMessage `gorm:"type:jsonb"`
	AvailableTimeSlots     json.RawMessage `gorm:"type:jsonb"`
	NotificationPrefs      json.RawMessage `gorm:"type:jsonb"`
	SavedAddresses         json.RawMessage `gorm:"type:jsonb"`
	CreatedAt              time.Time       `gorm:"not null"`
	UpdatedAt              time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProfileModel) TableName() string {
	return "users"
}

// GormProfileRepository is the GORM-based implementation of ProfileRepository.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository.
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByUID retrieves a profile by its identity-provider UID.
func (r *GormProfileRepository) FindByUID(ctx context.Context, uid string) (*profileDomain.Profile, error) {
	var model ProfileModel
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Profile", uid)
		}
		return nil, fmt.Errorf("failed to find profile by UID: %w", err)
	}
	return toDomainProfile(&model)
}

// Save persists a new profile.
func (r *GormProfileRepository) Save(ctx context.Context, p *profileDomain.Profile) error {
	model, err := toProfileModel(p)
	if err != nil {
		return fmt.Errorf("failed to convert profile to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Update persists changes to an existing profile.
func (r *GormProfileRepository) Update(ctx context.Context, p *profileDomain.Profile) error {
	model, err := toProfileModel(p)
	if err != nil {
		return fmt.Errorf("failed to convert profile to model: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&ProfileModel{}).
		Where("uid = ?", model.UID).
		Updates(map[string]interface{}{
			"name":                     model.Name,
			"email":                    model.Email,
			"phone":                    model.Phone,
			"role":                     model.Role,
			"profile_picture":          model.ProfilePicture,
			"has_completed_onboarding": model.HasCompletedOnboarding,
			"vehicles":                 model.Vehicles,
			"business_name":            model.BusinessName,
			"available_days":           model.AvailableDays,
			"available_time_slots":     model.AvailableTimeSlots,
			"notification_prefs":       model.NotificationPrefs,
			"saved_addresses":          model.SavedAddresses,
			"updated_at":               model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Profile", p.UID())
	}
	return nil
}

// --- Conversion Helpers ---

func toProfileModel(p *profileDomain.Profile) (*ProfileModel, error) {
	vehicles, err := json.Marshal(p.Vehicles())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vehicles: %w", err)
	}

	model := &ProfileModel{
		UID:                    p.UID(),
		Name:                   p.Name(),
		Email:                  p.Email(),
		Phone:                  p.Phone(),
		Role:                   p.Role().String(),
		ProfilePicture:         p.ProfilePicture(),
		HasCompletedOnboarding: p.HasCompletedOnboarding(),
		Vehicles:               vehicles,
		BusinessName:           p.BusinessName(),
		CreatedAt:              p.CreatedAt(),
		UpdatedAt:              p.UpdatedAt(),
	}

	if model.AvailableDays, err = marshalOptional(p.AvailableDays()); err != nil {
		return nil, err
	}
	if model.AvailableTimeSlots, err = marshalOptional(p.AvailableTimeSlots()); err != nil {
		return nil, err
	}
	if model.NotificationPrefs, err = marshalOptional(p.NotificationPrefs()); err != nil {
		return nil, err
	}
	if model.SavedAddresses, err = marshalOptional(p.SavedAddresses()); err != nil {
		return nil, err
	}
	return model, nil
}

func toDomainProfile(m *ProfileModel) (*profileDomain.Profile, error) {
	var vehicles []string
	if len(m.Vehicles) > 0 {
		if err := json.Unmarshal(m.Vehicles, &vehicles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vehicles: %w", err)
		}
	}

	availableDays, err := unmarshalOptional[profileDomain.WeekdayAvailability](m.AvailableDays)
	if err != nil {
		return nil, err
	}
	availableTimeSlots, err := unmarshalOptional[profileDomain.TimeSlotAvailability](m.AvailableTimeSlots)
	if err != nil {
		return nil, err
	}
	notificationPrefs, err := unmarshalOptional[profileDomain.NotificationPreferences](m.NotificationPrefs)
	if err != nil {
		return nil, err
	}
	savedAddresses, err := unmarshalOptional[profileDomain.SavedAddresses](m.SavedAddresses)
	if err != nil {
		return nil, err
	}

	return profileDomain.Reconstruct(
		m.UID, m.Name, m.Email, m.Phone,
		profileDomain.Role(m.Role),
		m.ProfilePicture,
		m.HasCompletedOnboarding,
		vehicles,
		m.BusinessName,
		availableDays,
		availableTimeSlots,
		notificationPrefs,
		savedAddresses,
		m.CreatedAt, m.UpdatedAt,
	), nil
}

// marshalOptional serializes a nullable value object, keeping nil as SQL NULL.
func marshalOptional[T any](v *T) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value object: %w", err)
	}
	return data, nil
}

func unmarshalOptional[T any](data json.RawMessage) (*T, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value object: %w", err)
	}
	return &v, nil
}
