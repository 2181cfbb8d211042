package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store handles database operations for service records
type Store struct {
	db *sql.DB
}

// NewStore creates a new service store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const recordColumns = `
	id, name, description, base_price, hide_base_price,
	COALESCE(size_options, '[]'::jsonb) as size_options,
	COALESCE(features, '{}'::text[]) as features,
	image_url, category, is_featured, display_order,
	created_at, updated_at
`

func scanRecord(row interface{ Scan(...interface{}) error }) (*ServiceRecord, error) {
	var r ServiceRecord
	var sizeOptions []byte
	var features pq.StringArray
	var imageURL sql.NullString

	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.BasePrice, &r.HideBasePrice,
		&sizeOptions, &features, &imageURL, &r.Category, &r.IsFeatured,
		&r.DisplayOrder, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.SizeOptions = []SizeOption{}
	if err := json.Unmarshal(sizeOptions, &r.SizeOptions); err != nil {
		return nil, fmt.Errorf("decode size_options: %w", err)
	}
	r.Features = []string(features)
	if imageURL.Valid {
		r.ImageURL = &imageURL.String
	}

	return &r, nil
}

// ListByCategory retrieves one category's records, ascending by display order
func (s *Store) ListByCategory(ctx context.Context, category Category) ([]ServiceRecord, error) {
	query := "SELECT " + recordColumns + `
		FROM pool_services
		WHERE category = $1
		ORDER BY display_order ASC
	`

	rows, err := s.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fetchErr("ListByCategory query", err)
	}
	defer rows.Close()

	records := []ServiceRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fetchErr("ListByCategory scan", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr("ListByCategory rows", err)
	}

	return records, nil
}

// GetService retrieves a single record by ID
func (s *Store) GetService(ctx context.Context, id string) (*ServiceRecord, error) {
	query := "SELECT " + recordColumns + " FROM pool_services WHERE id = $1"

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fetchErr("GetService query", err)
	}

	return r, nil
}

// CreateService inserts a new record. The store assigns id and created_at.
func (s *Store) CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceRecord, error) {
	id := uuid.New().String()

	sizeOptions, err := json.Marshal(req.SizeOptions)
	if err != nil {
		return nil, mutationErr("CreateService encode", err)
	}

	query := `
		INSERT INTO pool_services (
			id, name, description, base_price, hide_base_price, size_options,
			features, image_url, category, is_featured, display_order
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING ` + recordColumns

	r, err := scanRecord(s.db.QueryRowContext(ctx, query,
		id, req.Name, req.Description, req.BasePrice, req.HideBasePrice,
		sizeOptions, pq.Array(req.Features), req.ImageURL, req.Category,
		req.IsFeatured, req.DisplayOrder,
	))
	if err != nil {
		return nil, mutationErr("CreateService", err)
	}

	return r, nil
}

// UpdateService updates an existing record. updated_at is stamped with the
// client's clock here, never with the database's now().
func (s *Store) UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*ServiceRecord, error) {
	// Build dynamic UPDATE query based on provided fields
	query := "UPDATE pool_services SET updated_at = $1"
	args := []interface{}{time.Now().UTC()}
	argCount := 1

	if req.Name != nil {
		argCount++
		query += fmt.Sprintf(", name = $%d", argCount)
		args = append(args, *req.Name)
	}
	if req.Description != nil {
		argCount++
		query += fmt.Sprintf(", description = $%d", argCount)
		args = append(args, *req.Description)
	}
	if req.BasePrice != nil {
		argCount++
		query += fmt.Sprintf(", base_price = $%d", argCount)
		args = append(args, *req.BasePrice)
	}
	if req.HideBasePrice != nil {
		argCount++
		query += fmt.Sprintf(", hide_base_price = $%d", argCount)
		args = append(args, *req.HideBasePrice)
	}
	if req.SizeOptions != nil {
		sizeOptions, err := json.Marshal(*req.SizeOptions)
		if err != nil {
			return nil, mutationErr("UpdateService encode", err)
		}
		argCount++
		query += fmt.Sprintf(", size_options = $%d", argCount)
		args = append(args, sizeOptions)
	}
	if req.Features != nil {
		argCount++
		query += fmt.Sprintf(", features = $%d", argCount)
		args = append(args, pq.Array(*req.Features))
	}
	if req.SetImageURL {
		argCount++
		query += fmt.Sprintf(", image_url = $%d", argCount)
		args = append(args, req.ImageURL)
	}
	if req.Category != nil {
		argCount++
		query += fmt.Sprintf(", category = $%d", argCount)
		args = append(args, *req.Category)
	}
	if req.IsFeatured != nil {
		argCount++
		query += fmt.Sprintf(", is_featured = $%d", argCount)
		args = append(args, *req.IsFeatured)
	}
	if req.DisplayOrder != nil {
		argCount++
		query += fmt.Sprintf(", display_order = $%d", argCount)
		args = append(args, *req.DisplayOrder)
	}

	argCount++
	query += fmt.Sprintf(" WHERE id = $%d", argCount)
	args = append(args, id)

	query += " RETURNING " + recordColumns

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mutationErr("UpdateService", err)
	}

	return r, nil
}

// DeleteService hard-deletes a record by ID
func (s *Store) DeleteService(ctx context.Context, id string) error {
	query := "DELETE FROM pool_services WHERE id = $1"
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return mutationErr("DeleteService", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mutationErr("DeleteService rows affected", err)
	}

	if rows == 0 {
		return mutationErr("DeleteService", ErrNotFound)
	}

	return nil
}

// SwapDisplayOrder exchanges display_order between two records as two
// independent updates. If the second update fails after the first applied,
// the pair is left inconsistent; callers re-fetch rather than trusting the
// swap. Only display_order is touched, not updated_at.
func (s *Store) SwapDisplayOrder(ctx context.Context, a, b ServiceRecord) error {
	query := "UPDATE pool_services SET display_order = $1 WHERE id = $2"

	if _, err := s.db.ExecContext(ctx, query, b.DisplayOrder, a.ID); err != nil {
		return mutationErr("SwapDisplayOrder first update", err)
	}
	if _, err := s.db.ExecContext(ctx, query, a.DisplayOrder, b.ID); err != nil {
		return mutationErr("SwapDisplayOrder second update", err)
	}

	return nil
}
