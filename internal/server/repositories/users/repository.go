// Package users declares the credential-store contract: lookup and
// existence checks over account records. No session logic lives here.
package users

import (
	"context"

	"github.com/dsavelev/sessiond/internal/server/models"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	// Create inserts a new user and returns it with ID and timestamps set.
	// Unique-constraint violations surface as common.ErrUsernameTaken or
	// common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the user with the given username, or
	// common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByID returns the user with the given ID, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// ExistsByUsername reports whether a user with the username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
