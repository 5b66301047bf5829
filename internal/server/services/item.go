package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dsavelev/sessiond/internal/common"
	"github.com/dsavelev/sessiond/internal/server/models"
	"github.com/dsavelev/sessiond/internal/server/repositories/repomanager"
)

// ItemInput carries the caller-editable fields of an item.
type ItemInput struct {
	Title       string
	Description string
}

// ItemPage is one page of a listing plus the total match count.
type ItemPage struct {
	Items []*models.Item
	Page  int
	Size  int
	Total int64
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ItemService serves the diagnostic-record resource. Listing and reads are
// deliberately not scoped to the caller (diagnostic data is shared between
// accounts); creation binds the record to the caller and only the owner may
// update or delete it.
type ItemService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

// NewItemService constructs an ItemService.
func NewItemService(db *sql.DB, m repomanager.RepositoryManager) *ItemService {
	return &ItemService{db: db, repos: m}
}

// List returns a page of items, newest first, optionally filtered by a
// title/description substring.
func (s *ItemService) List(ctx context.Context, search string, page, size int) (*ItemPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.repos.Items(s.db).List(ctx, search, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return &ItemPage{Items: items, Page: page, Size: size, Total: total}, nil
}

// Get returns a single item by ID.
func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.repos.Items(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading item: %w", err)
	}
	return item, nil
}

// Create stores a new item owned by the calling user.
func (s *ItemService) Create(ctx context.Context, username string, in ItemInput) (*models.Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	user, err := s.lookupUser(ctx, username)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Title:       in.Title,
		Description: nullString(in.Description),
		UserID:      sql.NullInt64{Int64: user.ID, Valid: true},
	}
	created, err := s.repos.Items(s.db).Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("error creating item: %w", err)
	}
	return created, nil
}

// Update rewrites an item's editable fields. Only the owning user may do so.
func (s *ItemService) Update(ctx context.Context, username string, id int64, in ItemInput) (*models.Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	item, err := s.authorizeOwner(ctx, username, id)
	if err != nil {
		return nil, err
	}

	item.Title = in.Title
	item.Description = nullString(in.Description)
	if err := s.repos.Items(s.db).Update(ctx, item); err != nil {
		return nil, fmt.Errorf("error updating item: %w", err)
	}
	return item, nil
}

// Delete removes an item. Only the owning user may do so.
func (s *ItemService) Delete(ctx context.Context, username string, id int64) error {
	if _, err := s.authorizeOwner(ctx, username, id); err != nil {
		return err
	}
	if err := s.repos.Items(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting item: %w", err)
	}
	return nil
}

// --- helpers below ---

func (s *ItemService) lookupUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

func (s *ItemService) authorizeOwner(ctx context.Context, username string, itemID int64) (*models.Item, error) {
	user, err := s.lookupUser(ctx, username)
	if err != nil {
		return nil, err
	}
	item, err := s.repos.Items(s.db).GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading item: %w", err)
	}
	if !item.UserID.Valid || item.UserID.Int64 != user.ID {
		return nil, common.ErrorForbidden
	}
	return item, nil
}

func validateItemInput(in ItemInput) error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if len(in.Title) > 255 {
		return fmt.Errorf("%w: title must be at most 255 characters", common.ErrValidation)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
