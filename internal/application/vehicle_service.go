package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	vehicleDomain "github.com/haulbuddy/service-marketplace/internal/domain/vehicle"
	"github.com/haulbuddy/service-marketplace/internal/storage"
)

// CreateVehicleRequest holds the data needed to list a new vehicle.
type CreateVehicleRequest struct {
	Type            string  `json:"type" binding:"required"`
	Make            string  `json:"make" binding:"required"`
	Model           string  `json:"model" binding:"required"`
	Year            string  `json:"year" binding:"required"`
	LicensePlate    string  `json:"license_plate" binding:"required"`
	Capacity        string  `json:"capacity"`
	HourlyRate      float64 `json:"hourly_rate" binding:"required"`
	OfferAssistance bool    `json:"offer_assistance"`
	AssistanceRate  float64 `json:"assistance_rate"`
}

// UpdateRatesRequest holds the pricing fields an owner may change.
type UpdateRatesRequest struct {
	HourlyRate      float64 `json:"hourly_rate" binding:"required"`
	OfferAssistance bool    `json:"offer_assistance"`
	AssistanceRate  float64 `json:"assistance_rate"`
}

// VehicleDTO is the response representation of a vehicle listing.
type VehicleDTO struct {
	ID              string                 `json:"id"`
	OwnerID         string                 `json:"owner_id"`
	Type            string                 `json:"type"`
	Make            string                 `json:"make"`
	Model           string                 `json:"model"`
	Year            string                 `json:"year"`
	LicensePlate    string                 `json:"license_plate"`
	Capacity        string                 `json:"capacity,omitempty"`
	Photos          vehicleDomain.PhotoSet `json:"photos"`
	HourlyRate      float64                `json:"hourly_rate"`
	OfferAssistance bool                   `json:"offer_assistance"`
	AssistanceRate  float64                `json:"assistance_rate"`
	IsActive        bool                   `json:"is_active"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// VehicleService is the application service for vehicle listings.
type VehicleService struct {
	repo    vehicleDomain.VehicleRepository
	storage storage.ObjectStorage
	logger  *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(repo vehicleDomain.VehicleRepository, store storage.ObjectStorage, logger *zap.Logger) *VehicleService {
	return &VehicleService{repo: repo, storage: store, logger: logger}
}

// CreateVehicle lists a new vehicle for the owner. The listing and the
// back-reference on the owner's profile are written in one transaction.
func (s *VehicleService) CreateVehicle(ctx context.Context, ownerID string, req CreateVehicleRequest) (*VehicleDTO, error) {
	v, err := vehicleDomain.NewVehicle(ownerID,
		vehicleDomain.Info{
			Type:         req.Type,
			Make:         req.Make,
			Model:        req.Model,
			Year:         req.Year,
			LicensePlate: req.LicensePlate,
			Capacity:     req.Capacity,
		},
		vehicleDomain.Pricing{
			HourlyRate:      req.HourlyRate,
			OfferAssistance: req.OfferAssistance,
			AssistanceRate:  req.AssistanceRate,
		},
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithOwner(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle listed",
		zap.String("vehicle_id", v.ID()),
		zap.String("owner_id", ownerID),
	)

	result := toVehicleDTO(v)
	return &result, nil
}

// GetVehicle retrieves a single listing.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID string) (*VehicleDTO, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	result := toVehicleDTO(v)
	return &result, nil
}

// GetOwnerVehicles returns every listing belonging to the owner.
func (s *VehicleService) GetOwnerVehicles(ctx context.Context, ownerID string) ([]VehicleDTO, error) {
	vehicles, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		result[i] = toVehicleDTO(v)
	}
	return result, nil
}

// UploadVehiclePhoto stores the photo for the given slot and records its URL
// on the listing.
func (s *VehicleService) UploadVehiclePhoto(ctx context.Context, vehicleID, ownerID string, slot vehicleDomain.PhotoSlot, data []byte, contentType string) (*VehicleDTO, error) {
	v, err := s.findOwnedVehicle(ctx, vehicleID, ownerID)
	if err != nil {
		return nil, err
	}
	if !slot.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown photo slot: %s", slot))
	}

	path := PhotoObjectPath(vehicleID, slot, time.Now())
	url, err := s.storage.Upload(ctx, path, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	if err := v.SetPhoto(slot, url); err != nil {
		return nil, err
	}

	v.IncrementVersion()
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	result := toVehicleDTO(v)
	return &result, nil
}

// UploadVehiclePhotos stores a batch of photos for the listing. The byte
// uploads fan out concurrently; the listing row is written once afterwards,
// so the batch never races itself on the version check.
func (s *VehicleService) UploadVehiclePhotos(ctx context.Context, vehicleID, ownerID string, photos []PhotoUpload) (*VehicleDTO, error) {
	v, err := s.findOwnedVehicle(ctx, vehicleID, ownerID)
	if err != nil {
		return nil, err
	}
	for _, photo := range photos {
		if !photo.Slot.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown photo slot: %s", photo.Slot))
		}
	}

	var mu sync.Mutex
	urls := make(map[vehicleDomain.PhotoSlot]string, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	for _, photo := range photos {
		photo := photo
		g.Go(func() error {
			path := PhotoObjectPath(vehicleID, photo.Slot, time.Now())
			url, err := s.storage.Upload(gctx, path, photo.Data, photo.ContentType)
			if err != nil {
				return fmt.Errorf("failed to upload %s photo: %w", photo.Slot, err)
			}
			mu.Lock()
			urls[photo.Slot] = url
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for slot, url := range urls {
		if err := v.SetPhoto(slot, url); err != nil {
			return nil, err
		}
	}

	v.IncrementVersion()
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	result := toVehicleDTO(v)
	return &result, nil
}

// UpdateRates changes a listing's pricing.
func (s *VehicleService) UpdateRates(ctx context.Context, vehicleID, ownerID string, req UpdateRatesRequest) (*VehicleDTO, error) {
	v, err := s.findOwnedVehicle(ctx, vehicleID, ownerID)
	if err != nil {
		return nil, err
	}

	if err := v.UpdateRates(vehicleDomain.Pricing{
		HourlyRate:      req.HourlyRate,
		OfferAssistance: req.OfferAssistance,
		AssistanceRate:  req.AssistanceRate,
	}); err != nil {
		return nil, err
	}

	v.IncrementVersion()
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	result := toVehicleDTO(v)
	return &result, nil
}

// DeactivateVehicle takes a listing off the marketplace without deleting it.
func (s *VehicleService) DeactivateVehicle(ctx context.Context, vehicleID, ownerID string) (*VehicleDTO, error) {
	v, err := s.findOwnedVehicle(ctx, vehicleID, ownerID)
	if err != nil {
		return nil, err
	}

	v.Deactivate()
	v.IncrementVersion()
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	result := toVehicleDTO(v)
	return &result, nil
}

func (s *VehicleService) findOwnedVehicle(ctx context.Context, vehicleID, ownerID string) (*vehicleDomain.Vehicle, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("this vehicle does not belong to you")
	}
	return v, nil
}

// PhotoObjectPath builds the storage path for a vehicle photo.
func PhotoObjectPath(vehicleID string, slot vehicleDomain.PhotoSlot, now time.Time) string {
	return fmt.Sprintf("vehicle-photos/%s_%s_%d.jpg", vehicleID, slot, now.UnixMilli())
}

func toVehicleDTO(v *vehicleDomain.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:              v.ID(),
		OwnerID:         v.OwnerID(),
		Type:            string(v.Type()),
		Make:            v.Make(),
		Model:           v.Model(),
		Year:            v.Year(),
		LicensePlate:    v.LicensePlate(),
		Capacity:        v.Capacity(),
		Photos:          v.Photos(),
		HourlyRate:      v.HourlyRate(),
		OfferAssistance: v.OfferAssistance(),
		AssistanceRate:  v.AssistanceRate(),
		IsActive:        v.IsActive(),
		Version:         v.Version(),
		CreatedAt:       v.CreatedAt(),
		UpdatedAt:       v.UpdatedAt(),
	}
}
