package catalog

import "context"

// Repository is the store capability the storefront and admin editor consume.
// The Postgres Store is the production implementation; tests substitute an
// in-memory fake.
type Repository interface {
	// ListByCategory returns the category's records ascending by display order.
	ListByCategory(ctx context.Context, category Category) ([]ServiceRecord, error)

	// GetService returns one record, or (nil, nil) when the id is unknown.
	GetService(ctx context.Context, id string) (*ServiceRecord, error)

	// CreateService inserts a new record; id and timestamps are store-assigned.
	CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceRecord, error)

	// UpdateService partially overwrites the editable field set and stamps
	// updated_at with the client's clock. Returns (nil, nil) when the id is
	// unknown.
	UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*ServiceRecord, error)

	// DeleteService hard-deletes a record.
	DeleteService(ctx context.Context, id string) error

	// SwapDisplayOrder exchanges the two records' display_order values as two
	// independent updates. Not atomic: a failure may leave only the first
	// applied, so callers must re-fetch to observe true state.
	SwapDisplayOrder(ctx context.Context, a, b ServiceRecord) error
}
