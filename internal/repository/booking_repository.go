package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	bookingDomain "github.com/haulbuddy/service-marketplace/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 string     `gorm:"primaryKey;size:64"`
	CustomerID         string     `gorm:"index;not null;size:64"`
	OwnerID            string     `gorm:"index;not null;size:64"`
	VehicleID          string     `gorm:"not null;size:64"`
	Status             string     `gorm:"not null;size:20;index"`
	CargoDescription   string     `gorm:"size:1000"`
	PickupAddress      string     `gorm:"size:500"`
	DestinationAddress string     `gorm:"size:500"`
	PickupDateTime     time.Time  `gorm:"not null"`
	EstimatedHours     float64    `gorm:"not null"`
	NeedsAssistance    bool       `gorm:"not null;default:false"`
	RidingAlong        bool       `gorm:"not null;default:false"`
	TotalCost          float64    `gorm:"not null"`
	AssistanceCost     float64    `gorm:"not null;default:0"`
	Notes              string     `gorm:"size:1000"`
	CompletedAt        *time.Time `gorm:""`
	Version            int64      `gorm:"not null;default:1"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id)
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByCustomerID retrieves all bookings placed by a customer, newest first.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID string) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find customer bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// FindByOwnerID retrieves all bookings addressed to an owner, newest first.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models), total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"cargo_description": model.CargoDescription,
			"pickup_address":    model.PickupAddress,
			"destination_address": model.DestinationAddress,
			"pickup_date_time": model.PickupDateTime,
			"estimated_hours":  model.EstimatedHours,
			"needs_assistance": model.NeedsAssistance,
			"riding_along":     model.RidingAlong,
			"total_cost":       model.TotalCost,
			"assistance_cost":  model.AssistanceCost,
			"notes":            model.Notes,
			"completed_at":     model.CompletedAt,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                 bk.ID(),
		CustomerID:         bk.CustomerID(),
		OwnerID:            bk.OwnerID(),
		VehicleID:          bk.VehicleID(),
		Status:             bk.Status().String(),
		CargoDescription:   bk.CargoDescription(),
		PickupAddress:      bk.PickupAddress(),
		DestinationAddress: bk.DestinationAddress(),
		PickupDateTime:     bk.PickupDateTime(),
		EstimatedHours:     bk.EstimatedHours(),
		NeedsAssistance:    bk.NeedsAssistance(),
		RidingAlong:        bk.RidingAlong(),
		TotalCost:          bk.TotalCost(),
		AssistanceCost:     bk.AssistanceCost(),
		Notes:              bk.Notes(),
		CompletedAt:        bk.CompletedAt(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID, m.CustomerID, m.OwnerID, m.VehicleID,
		bookingDomain.BookingStatus(m.Status),
		m.CargoDescription, m.PickupAddress, m.DestinationAddress,
		m.PickupDateTime,
		m.EstimatedHours,
		m.NeedsAssistance, m.RidingAlong,
		m.TotalCost, m.AssistanceCost,
		m.Notes,
		m.CompletedAt,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}
