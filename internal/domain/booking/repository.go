package booking

import "context"

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id string) (*Booking, error)

	// FindByCustomerID retrieves all bookings placed by a customer,
	// ordered by creation time descending.
	FindByCustomerID(ctx context.Context, customerID string) ([]*Booking, error)

	// FindByOwnerID retrieves all bookings addressed to an owner,
	// ordered by creation time descending.
	FindByOwnerID(ctx context.Context, ownerID string) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
