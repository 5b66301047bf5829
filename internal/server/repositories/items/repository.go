// Package items declares persistence for vehicle-diagnostic records, the
// resource served to authenticated users.
package items

import (
	"context"

	"github.com/dsavelev/sessiond/internal/server/models"
)

// Repository defines CRUD and listing operations for items.
type Repository interface {
	// List returns a page of items ordered newest first, plus the total
	// count for the same filter. A non-empty search narrows the result to
	// items whose title or description contains the substring.
	List(ctx context.Context, search string, limit, offset int) ([]*models.Item, int64, error)

	// GetByID returns the item with the given ID, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Item, error)

	// Create inserts a new item and returns it with ID and timestamps set.
	Create(ctx context.Context, item *models.Item) (*models.Item, error)

	// Update rewrites the mutable fields of the item.
	Update(ctx context.Context, item *models.Item) error

	// Delete removes the item by ID.
	Delete(ctx context.Context, id int64) error
}
