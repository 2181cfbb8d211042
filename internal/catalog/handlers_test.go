package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo lets each test script the store's behavior per call.
type fakeRepo struct {
	listFn   func(ctx context.Context, category Category) ([]ServiceRecord, error)
	getFn    func(ctx context.Context, id string) (*ServiceRecord, error)
	createFn func(ctx context.Context, req CreateServiceRequest) (*ServiceRecord, error)
	updateFn func(ctx context.Context, id string, req UpdateServiceRequest) (*ServiceRecord, error)
	deleteFn func(ctx context.Context, id string) error
	swapFn   func(ctx context.Context, a, b ServiceRecord) error
}

func (f *fakeRepo) ListByCategory(ctx context.Context, category Category) ([]ServiceRecord, error) {
	return f.listFn(ctx, category)
}

func (f *fakeRepo) GetService(ctx context.Context, id string) (*ServiceRecord, error) {
	return f.getFn(ctx, id)
}

func (f *fakeRepo) CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceRecord, error) {
	return f.createFn(ctx, req)
}

func (f *fakeRepo) UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*ServiceRecord, error) {
	return f.updateFn(ctx, id, req)
}

func (f *fakeRepo) DeleteService(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeRepo) SwapDisplayOrder(ctx context.Context, a, b ServiceRecord) error {
	return f.swapFn(ctx, a, b)
}

func newRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/services", h.ListServices).Methods(http.MethodGet)
	r.HandleFunc("/api/services/{id}", h.GetService).Methods(http.MethodGet)
	return r
}

func TestListServices(t *testing.T) {
	t.Run("filters by the requested category", func(t *testing.T) {
		var asked Category
		repo := &fakeRepo{listFn: func(_ context.Context, category Category) ([]ServiceRecord, error) {
			asked = category
			return []ServiceRecord{
				{ID: "a", Name: "Basic Open", Category: category, DisplayOrder: 1},
				{ID: "b", Name: "Premium Open", Category: category, DisplayOrder: 2},
			}, nil
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/services?category=Pool+Openings", nil)
		rec := httptest.NewRecorder()
		newRouter(NewHandler(repo)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, CategoryOpenings, asked)

		var resp ServiceListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, CategoryOpenings, resp.Category)
		assert.Equal(t, 2, resp.Total)
		require.Len(t, resp.Services, 2)
		assert.Equal(t, "Basic Open", resp.Services[0].Name)
	})

	t.Run("defaults to the first category tab", func(t *testing.T) {
		var asked Category
		repo := &fakeRepo{listFn: func(_ context.Context, category Category) ([]ServiceRecord, error) {
			asked = category
			return []ServiceRecord{}, nil
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
		rec := httptest.NewRecorder()
		newRouter(NewHandler(repo)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, DefaultCategory, asked)
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		repo := &fakeRepo{listFn: func(_ context.Context, _ Category) ([]ServiceRecord, error) {
			t.Fatal("store must not be queried")
			return nil, nil
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/services?category=Hot+Tubs", nil)
		rec := httptest.NewRecorder()
		newRouter(NewHandler(repo)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("surfaces a generic failure on store errors", func(t *testing.T) {
		repo := &fakeRepo{listFn: func(_ context.Context, _ Category) ([]ServiceRecord, error) {
			return nil, fetchErr("ListByCategory query", errors.New("connection refused"))
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/services?category=Spa+Packages", nil)
		rec := httptest.NewRecorder()
		newRouter(NewHandler(repo)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "failed to load services")
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestGetService(t *testing.T) {
	t.Run("returns the record", func(t *testing.T) {
		repo := &fakeRepo{getFn: func(_ context.Context, id string) (*ServiceRecord, error) {
			return &ServiceRecord{ID: id, Name: "Spa Winterizing", Category: CategorySpa}, nil
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/services/abc", nil)
		rec := httptest.NewRecorder()
		newRouter(NewHandler(repo)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got ServiceRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "abc", got.ID)
		assert.Equal(t, "Spa Winterizing", got.Name)
	})

	t.Run("404 when unknown", func(t *testing.T) {
		repo := &fakeRepo{getFn: func(_ context.Context, _ string) (*ServiceRecord, error) {
			return nil, nil
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/services/nope", nil)
		rec := httptest.NewRecorder()
		newRouter(NewHandler(repo)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
