package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	vehicleDomain "github.com/haulbuddy/service-marketplace/internal/domain/vehicle"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID              string          `gorm:"primaryKey;size:64"`
	OwnerID         string          `gorm:"index;not null;size:64"`
	Type            string          `gorm:"not null;size:20"`
	Make            string          `gorm:"not null;size:100"`
	Model           string          `gorm:"not null;size:100"`
	Year            string          `gorm:"not null;size:4"`
	LicensePlate    string          `gorm:"not null;size:20"`
	Capacity        string          `gorm:"size:200"`
	Photos          json.RawMessage `gorm:"type:jsonb"`
	HourlyRate      float64         `gorm:"not null"`
	OfferAssistance bool            `gorm:"not null;default:false"`
	AssistanceRate  float64         `gorm:"not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`
	Version         int64           `gorm:"not null;default:1"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// GormVehicleRepository is the GORM-based implementation of VehicleRepository.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a listing by its unique identifier.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id string) (*vehicleDomain.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id)
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toDomainVehicle(&model)
}

// FindByOwnerID retrieves all listings belonging to an owner, newest first.
func (r *GormVehicleRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*vehicleDomain.Vehicle, error) {
	var models []VehicleModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner vehicles: %w", err)
	}

	vehicles := make([]*vehicleDomain.Vehicle, len(models))
	for i := range models {
		v, err := toDomainVehicle(&models[i])
		if err != nil {
			return nil, err
		}
		vehicles[i] = v
	}
	return vehicles, nil
}

// Save persists a new listing.
func (r *GormVehicleRepository) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model, err := toVehicleModel(v)
	if err != nil {
		return fmt.Errorf("failed to convert vehicle to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// SaveWithOwner persists a new listing and appends its ID to the owner's
// profile inside a single transaction, so a vehicle row never exists
// without its back-reference.
func (r *GormVehicleRepository) SaveWithOwner(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model, err := toVehicleModel(v)
	if err != nil {
		return fmt.Errorf("failed to convert vehicle to model: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save vehicle: %w", err)
		}

		var owner ProfileModel
		if err := tx.Where("uid = ?", v.OwnerID()).First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Profile", v.OwnerID())
			}
			return fmt.Errorf("failed to load owner profile: %w", err)
		}

		var vehicles []string
		if len(owner.Vehicles) > 0 {
			if err := json.Unmarshal(owner.Vehicles, &vehicles); err != nil {
				return fmt.Errorf("failed to unmarshal owner vehicles: %w", err)
			}
		}
		for _, id := range vehicles {
			if id == v.ID() {
				return nil
			}
		}
		vehicles = append(vehicles, v.ID())

		data, err := json.Marshal(vehicles)
		if err != nil {
			return fmt.Errorf("failed to marshal owner vehicles: %w", err)
		}

		if err := tx.Model(&ProfileModel{}).
			Where("uid = ?", v.OwnerID()).
			Updates(map[string]interface{}{
				"vehicles":   json.RawMessage(data),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update owner profile: %w", err)
		}
		return nil
	})
}

// Update persists changes to an existing listing with optimistic locking.
func (r *GormVehicleRepository) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model, err := toVehicleModel(v)
	if err != nil {
		return fmt.Errorf("failed to convert vehicle to model: %w", err)
	}

	expectedVersion := v.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"photos":           model.Photos,
			"hourly_rate":      model.HourlyRate,
			"offer_assistance": model.OfferAssistance,
			"assistance_rate":  model.AssistanceRate,
			"is_active":        model.IsActive,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("vehicle was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toVehicleModel(v *vehicleDomain.Vehicle) (*VehicleModel, error) {
	photos, err := json.Marshal(v.Photos())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photos: %w", err)
	}

	return &VehicleModel{
		ID:              v.ID(),
		OwnerID:         v.OwnerID(),
		Type:            string(v.Type()),
		Make:            v.Make(),
		Model:           v.Model(),
		Year:            v.Year(),
		LicensePlate:    v.LicensePlate(),
		Capacity:        v.Capacity(),
		Photos:          photos,
		HourlyRate:      v.HourlyRate(),
		OfferAssistance: v.OfferAssistance(),
		AssistanceRate:  v.AssistanceRate(),
		IsActive:        v.IsActive(),
		Version:         v.Version(),
		CreatedAt:       v.CreatedAt(),
		UpdatedAt:       v.UpdatedAt(),
	}, nil
}

func toDomainVehicle(m *VehicleModel) (*vehicleDomain.Vehicle, error) {
	var photos vehicleDomain.PhotoSet
	if len(m.Photos) > 0 {
		if err := json.Unmarshal(m.Photos, &photos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal photos: %w", err)
		}
	}

	return vehicleDomain.Reconstruct(
		m.ID, m.OwnerID,
		vehicleDomain.VehicleType(m.Type),
		m.Make, m.Model, m.Year, m.LicensePlate, m.Capacity,
		photos,
		m.HourlyRate,
		m.OfferAssistance,
		m.AssistanceRate,
		m.IsActive,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	), nil
}
