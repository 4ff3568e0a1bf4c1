package prefs

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for report preference storage
type Repository interface {
	// Get returns the stored preferences, or errors.ErrNotFound when the
	// user has never saved a view
	Get(ctx context.Context, userID uuid.UUID) (*Preferences, error)

	// Save upserts the user's preferences
	Save(ctx context.Context, p *Preferences) error

	// Delete removes stored preferences (account reset path)
	Delete(ctx context.Context, userID uuid.UUID) error
}
