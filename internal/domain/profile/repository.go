package profile

import "context"

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	// FindByUID retrieves a profile by its identity-provider UID.
	FindByUID(ctx context.Context, uid string) (*Profile, error)

	// Save persists a new profile.
	Save(ctx context.Context, p *Profile) error

	// Update persists changes to an existing profile.
	Update(ctx context.Context, p *Profile) error
}
