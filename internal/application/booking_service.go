package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	"github.com/haulbuddy/service-marketplace/internal/common/events"
	"github.com/haulbuddy/service-marketplace/internal/common/kafka"
	bookingDomain "github.com/haulbuddy/service-marketplace/internal/domain/booking"
)

// SubmitBookingRequest holds the partially-filled booking form submitted by a
// customer. Every field is optional; missing values are defaulted so a
// submission can never fail for incompleteness.
type SubmitBookingRequest struct {
	CargoDescription   string  `json:"cargo_description"`
	PickupAddress      string  `json:"pickup_address"`
	DestinationAddress string  `json:"destination_address"`
	PickupDateTime     string  `json:"pickup_date_time"`
	EstimatedHours     float64 `json:"estimated_hours"`
	NeedsAssistance    bool    `json:"needs_assistance"`
	RidingAlong        bool    `json:"riding_along"`
	OwnerID            string  `json:"owner_id"`
	VehicleID          string  `json:"vehicle_id"`
	Notes              string  `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 string     `json:"id"`
	CustomerID         string     `json:"customer_id"`
	OwnerID            string     `json:"owner_id"`
	VehicleID          string     `json:"vehicle_id"`
	Status             string     `json:"status"`
	CargoDescription   string     `json:"cargo_description,omitempty"`
	PickupAddress      string     `json:"pickup_address,omitempty"`
	DestinationAddress string     `json:"destination_address,omitempty"`
	PickupDateTime     time.Time  `json:"pickup_date_time"`
	EstimatedHours     float64    `json:"estimated_hours"`
	NeedsAssistance    bool       `json:"needs_assistance"`
	RidingAlong        bool       `json:"riding_along"`
	TotalCost          float64    `json:"total_cost"`
	AssistanceCost     float64    `json:"assistance_cost"`
	Notes              string     `json:"notes,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	Version            int64      `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BookingStatsDTO is the admin view of booking counts per status.
type BookingStatsDTO struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// EventPublisher publishes cloud events to a topic. *kafka.Producer is the
// production implementation.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	pricing  bookingDomain.PricingStrategy
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	pricing bookingDomain.PricingStrategy,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		pricing:  pricing,
		producer: producer,
		logger:   logger,
	}
}

// SubmitBooking creates a new booking from the customer's form. The form is
// normalized first (sentinel owner and vehicle IDs, default duration,
// fallback pickup time), then priced, then persisted as pending.
func (s *BookingService) SubmitBooking(ctx context.Context, customerID string, req SubmitBookingRequest) (*BookingDTO, error) {
	form := bookingDomain.Form{
		CargoDescription:   req.CargoDescription,
		PickupAddress:      req.PickupAddress,
		DestinationAddress: req.DestinationAddress,
		PickupDateTime:     parsePickupTime(req.PickupDateTime),
		EstimatedHours:     req.EstimatedHours,
		NeedsAssistance:    req.NeedsAssistance,
		RidingAlong:        req.RidingAlong,
		OwnerID:            req.OwnerID,
		VehicleID:          req.VehicleID,
		Notes:              req.Notes,
	}.Normalize()

	quote, err := s.pricing.Calculate(bookingDomain.PricingParams{
		EstimatedHours:  form.EstimatedHours,
		NeedsAssistance: form.NeedsAssistance,
	})
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	bk, err := bookingDomain.NewBooking(customerID, form, quote)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking submitted",
		zap.String("booking_id", bk.ID()),
		zap.String("customer_id", customerID),
		zap.Float64("total_cost", bk.TotalCost()),
	)

	s.publishBookingEvent(ctx, events.BookingRequested, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking, visible only to its customer, its
// owner, or an admin.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID, requesterRole string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if requesterRole != "admin" && !bk.IsOwnedByCustomer(requesterID) && !bk.IsAssignedToOwner(requesterID) {
		return nil, domain.NewForbiddenError("you do not have access to this booking")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetActiveBookings returns the customer's bookings that are still in flight
// (pending, confirmed or in-progress), preserving the repository's
// newest-first order.
func (s *BookingService) GetActiveBookings(ctx context.Context, customerID string) ([]BookingDTO, error) {
	return s.customerBookings(ctx, customerID, func(st bookingDomain.BookingStatus) bool {
		return st.IsActive()
	})
}

// GetPastBookings returns the customer's settled bookings (completed,
// cancelled or declined), preserving the repository's newest-first order.
func (s *BookingService) GetPastBookings(ctx context.Context, customerID string) ([]BookingDTO, error) {
	return s.customerBookings(ctx, customerID, func(st bookingDomain.BookingStatus) bool {
		return st.IsPast()
	})
}

// GetCustomerBookings returns every booking the customer has placed.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID string) ([]BookingDTO, error) {
	return s.customerBookings(ctx, customerID, func(bookingDomain.BookingStatus) bool {
		return true
	})
}

func (s *BookingService) customerBookings(ctx context.Context, customerID string, keep func(bookingDomain.BookingStatus) bool) ([]BookingDTO, error) {
	bookings, err := s.repo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	result := make([]BookingDTO, 0, len(bookings))
	for _, bk := range bookings {
		if keep(bk.Status()) {
			result = append(result, toBookingDTO(bk))
		}
	}
	return result, nil
}

// GetOwnerBookings returns every booking addressed to the given owner.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID string) ([]BookingDTO, error) {
	bookings, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		result[i] = toBookingDTO(bk)
	}
	return result, nil
}

// CancelBooking cancels a booking on behalf of its customer. Only the
// customer who placed the booking may cancel it, and only while the status
// machine still allows cancellation.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, customerID string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !bk.IsOwnedByCustomer(customerID) {
		return nil, domain.NewForbiddenError("only the booking's customer can cancel it")
	}

	return s.applyTransition(ctx, bk, (*bookingDomain.Booking).Cancel, events.BookingCancelled)
}

// ConfirmBooking accepts a pending booking on behalf of its owner.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID, ownerID string) (*BookingDTO, error) {
	bk, err := s.findOwnerBooking(ctx, bookingID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, bk, (*bookingDomain.Booking).Confirm, events.BookingConfirmed)
}

// DeclineBooking rejects a pending booking on behalf of its owner.
func (s *BookingService) DeclineBooking(ctx context.Context, bookingID, ownerID string) (*BookingDTO, error) {
	bk, err := s.findOwnerBooking(ctx, bookingID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, bk, (*bookingDomain.Booking).Decline, events.BookingDeclined)
}

// StartBooking marks a confirmed booking as underway.
func (s *BookingService) StartBooking(ctx context.Context, bookingID, ownerID string) (*BookingDTO, error) {
	bk, err := s.findOwnerBooking(ctx, bookingID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, bk, (*bookingDomain.Booking).Start, events.BookingStarted)
}

// CompleteBooking finishes an in-progress booking on behalf of its owner,
// stamping the completion time.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID, ownerID string) (*BookingDTO, error) {
	bk, err := s.findOwnerBooking(ctx, bookingID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, bk, (*bookingDomain.Booking).Complete, events.BookingCompleted)
}

// CompleteBookingFromSettlement finishes a booking in response to a settled
// payment. The payment processor is trusted, so no ownership check applies.
func (s *BookingService) CompleteBookingFromSettlement(ctx context.Context, bookingID string) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if bk.Status() == bookingDomain.StatusCompleted {
		// Settlement events are at-least-once; a replay is not an error.
		return nil
	}
	_, err = s.applyTransition(ctx, bk, (*bookingDomain.Booking).Complete, events.BookingCompleted)
	return err
}

// ListAllBookings retrieves all bookings with pagination (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		result[i] = toBookingDTO(bk)
	}
	return result, total, nil
}

// GetBookingStats returns booking counts grouped by status (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &BookingStatsDTO{ByStatus: counts}
	for _, count := range counts {
		stats.Total += count
	}
	return stats, nil
}

// findOwnerBooking loads a booking and verifies the requester is its owner.
func (s *BookingService) findOwnerBooking(ctx context.Context, bookingID, ownerID string) (*bookingDomain.Booking, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsAssignedToOwner(ownerID) {
		return nil, domain.NewForbiddenError("this booking is not assigned to you")
	}
	return bk, nil
}

// applyTransition runs a domain transition, persists it with optimistic
// locking, and publishes the corresponding lifecycle event.
func (s *BookingService) applyTransition(
	ctx context.Context,
	bk *bookingDomain.Booking,
	transition func(*bookingDomain.Booking) error,
	eventType string,
) (*BookingDTO, error) {
	if err := transition(bk); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking transitioned",
		zap.String("booking_id", bk.ID()),
		zap.String("status", bk.Status().String()),
	)

	s.publishBookingEvent(ctx, eventType, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking) {
	evt := events.BookingEvent{
		BookingID:  bk.ID(),
		CustomerID: bk.CustomerID(),
		OwnerID:    bk.OwnerID(),
		VehicleID:  bk.VehicleID(),
		Status:     bk.Status().String(),
		TotalCost:  bk.TotalCost(),
	}

	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// parsePickupTime accepts an RFC 3339 timestamp and returns the zero time
// for anything it cannot parse; Normalize then substitutes the fallback.
func parsePickupTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
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
