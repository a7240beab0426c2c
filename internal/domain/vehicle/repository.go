package vehicle

import "context"

// VehicleRepository defines persistence operations for truck listings.
type VehicleRepository interface {
	// FindByID retrieves a listing by its unique identifier.
	FindByID(ctx context.Context, id string) (*Vehicle, error)

	// FindByOwnerID retrieves all listings belonging to an owner,
	// ordered by creation time descending.
	FindByOwnerID(ctx context.Context, ownerID string) ([]*Vehicle, error)

	// Save persists a new listing.
	Save(ctx context.Context, v *Vehicle) error

	// SaveWithOwner persists a new listing and appends its ID to the
	// owner's profile in a single transaction.
	SaveWithOwner(ctx context.Context, v *Vehicle) error

	// Update persists changes to an existing listing with optimistic locking.
	Update(ctx context.Context, v *Vehicle) error
}
