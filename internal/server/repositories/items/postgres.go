package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dsavelev/sessiond/internal/common"
	"github.com/dsavelev/sessiond/internal/dbx"
	"github.com/dsavelev/sessiond/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const itemColumns = `id, title, description, vin, chassis_number, vehicle_model,
		model_year, rpm, engine_temp, mileage, diagnostic_date, status,
		technician, engine_type, user_id, created_at, updated_at`

func (r *PostgresRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.Item, int64, error) {
	pattern := "%" + search + "%"

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM items
		WHERE $1 = '' OR title ILIKE $2 OR description ILIKE $2
	`
	if err := r.db.QueryRowContext(ctx, countQuery, search, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE $1 = '' OR title ILIKE $2 OR description ILIKE $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, search, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1
	`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `
		INSERT INTO items (title, description, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, item.Title, item.Description, item.UserID).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET title = $1, description = $2, updated_at = now()
		WHERE id = $3
	`
	if _, err := r.db.ExecContext(ctx, query, item.Title, item.Description, item.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM items
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanItem(scan func(dest ...any) error) (*models.Item, error) {
	item := &models.Item{}
	err := scan(&item.ID, &item.Title, &item.Description, &item.VIN,
		&item.ChassisNumber, &item.VehicleModel, &item.ModelYear, &item.RPM,
		&item.EngineTemp, &item.Mileage, &item.DiagnosticDate, &item.Status,
		&item.Technician, &item.EngineType, &item.UserID,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}
