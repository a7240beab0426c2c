package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
)

// Booking is the aggregate root for the booking domain. It links a customer,
// an owner and a vehicle for a single hauling job.
type Booking struct {
	id                 string
	customerID         string
	ownerID            string
	vehicleID          string
	status             BookingStatus
	cargoDescription   string
	pickupAddress      string
	destinationAddress string
	pickupDateTime     time.Time
	estimatedHours     float64
	needsAssistance    bool
	ridingAlong        bool
	totalCost          float64
	assistanceCost     float64
	notes              string

	completedAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=pending from an
// already-normalized form and a cost quote.
func NewBooking(customerID string, form Form, quote Quote) (*Booking, error) {
	if customerID == "" {
		return nil, domain.NewValidationError("customer ID is required")
	}

	now := time.Now().UTC()
	return &Booking{
		id:                 uuid.New().String(),
		customerID:         customerID,
		ownerID:            form.OwnerID,
		vehicleID:          form.VehicleID,
		status:             StatusPending,
		cargoDescription:   form.CargoDescription,
		pickupAddress:      form.PickupAddress,
		destinationAddress: form.DestinationAddress,
		pickupDateTime:     form.PickupDateTime,
		estimatedHours:     form.EstimatedHours,
		needsAssistance:    form.NeedsAssistance,
		ridingAlong:        form.RidingAlong,
		totalCost:          quote.TotalCost,
		assistanceCost:     quote.AssistanceCost,
		notes:              form.Notes,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, customerID, ownerID, vehicleID string,
	status BookingStatus,
	cargoDescription, pickupAddress, destinationAddress string,
	pickupDateTime time.Time,
	estimatedHours float64,
	needsAssistance, ridingAlong bool,
	totalCost, assistanceCost float64,
	notes string,
	completedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		customerID:         customerID,
		ownerID:            ownerID,
		vehicleID:          vehicleID,
		status:             status,
		cargoDescription:   cargoDescription,
		pickupAddress:      pickupAddress,
		destinationAddress: destinationAddress,
		pickupDateTime:     pickupDateTime,
		estimatedHours:     estimatedHours,
		needsAssistance:    needsAssistance,
		ridingAlong:        ridingAlong,
		totalCost:          totalCost,
		assistanceCost:     assistanceCost,
		notes:              notes,
		completedAt:        completedAt,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() string { return b.id }

// CustomerID returns the requesting customer's user ID.
func (b *Booking) CustomerID() string { return b.customerID }

// OwnerID returns the truck owner's user ID (possibly the unassigned sentinel).
func (b *Booking) OwnerID() string { return b.ownerID }

// VehicleID returns the booked vehicle's ID (possibly the unassigned sentinel).
func (b *Booking) VehicleID() string { return b.vehicleID }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// CargoDescription returns the free-text cargo description.
func (b *Booking) CargoDescription() string { return b.cargoDescription }

// PickupAddress returns the pickup address.
func (b *Booking) PickupAddress() string { return b.pickupAddress }

// DestinationAddress returns the destination address.
func (b *Booking) DestinationAddress() string { return b.destinationAddress }

// PickupDateTime returns the scheduled pickup time.
func (b *Booking) PickupDateTime() time.Time { return b.pickupDateTime }

// EstimatedHours returns the estimated job duration in hours.
func (b *Booking) EstimatedHours() float64 { return b.estimatedHours }

// NeedsAssistance returns true if loading/unloading help was requested.
func (b *Booking) NeedsAssistance() bool { return b.needsAssistance }

// RidingAlong returns true if the customer rides along in the truck.
func (b *Booking) RidingAlong() bool { return b.ridingAlong }

// TotalCost returns the estimated total cost.
func (b *Booking) TotalCost() float64 { return b.totalCost }

// AssistanceCost returns the assistance portion of the cost, 0 when none.
func (b *Booking) AssistanceCost() float64 { return b.assistanceCost }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// CompletedAt returns the completion time, or nil if not completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedByCustomer checks if the booking was placed by the given customer.
func (b *Booking) IsOwnedByCustomer(customerID string) bool {
	return b.customerID == customerID
}

// IsAssignedToOwner checks if the booking is addressed to the given owner.
func (b *Booking) IsAssignedToOwner(ownerID string) bool {
	return b.ownerID == ownerID
}

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm() error {
	return b.transition(StatusConfirmed)
}

// Decline transitions the booking from pending to declined.
func (b *Booking) Decline() error {
	return b.transition(StatusDeclined)
}

// Start transitions the booking from confirmed to in-progress.
func (b *Booking) Start() error {
	return b.transition(StatusInProgress)
}

// Complete transitions the booking to completed and stamps completedAt.
func (b *Booking) Complete() error {
	if err := b.transition(StatusCompleted); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.completedAt = &now
	return nil
}

// Cancel transitions the booking to cancelled if it is not in a terminal state.
func (b *Booking) Cancel() error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	return b.transition(StatusCancelled)
}

func (b *Booking) transition(target BookingStatus) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
