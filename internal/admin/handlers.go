package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"poolside-catalog/internal/auth"
	"poolside-catalog/internal/catalog"
	"poolside-catalog/internal/logger"

	"github.com/gorilla/mux"
)

// Handler exposes the editor over HTTP. Every route sits behind the gate's
// RequireAdmin middleware, so the operator identity is always present in
// the request context.
type Handler struct {
	editor *Editor
}

// NewHandler creates an admin handler
func NewHandler(editor *Editor) *Handler {
	return &Handler{editor: editor}
}

func operator(r *http.Request) string {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		return claims.Subject
	}
	return ""
}

type stateResponse struct {
	Mode     string                  `json:"mode"`
	Category catalog.Category        `json:"category"`
	Services []catalog.ServiceRecord `json:"services"`
	Draft    *catalog.ServiceRecord  `json:"draft,omitempty"`
}

func (h *Handler) writeState(w http.ResponseWriter, op string) {
	mode, draft, category, services := h.editor.State(op)
	resp := stateResponse{
		Mode:     mode.String(),
		Category: category,
		Services: services,
		Draft:    draft,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeError maps editor and store failures onto HTTP statuses. Mutation
// failures carry the store's message through verbatim so the operator sees
// what the store said.
func writeError(w http.ResponseWriter, err error) {
	var se *catalog.StoreError
	switch {
	case errors.Is(err, ErrConfirmRequired), errors.Is(err, ErrNoDraft),
		errors.Is(err, ErrNotEditing), errors.Is(err, ErrNotCreating):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrRowOutOfRange), errors.Is(err, catalog.ErrInvalidCategory):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnknownService), errors.Is(err, catalog.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &se) && se.Kind == catalog.KindMutation:
		logger.Errorf("admin mutation: %v", err)
		http.Error(w, se.Message(), http.StatusInternalServerError)
	case catalog.IsFetch(err):
		logger.Errorf("admin fetch: %v", err)
		http.Error(w, "failed to load services", http.StatusInternalServerError)
	default:
		logger.Errorf("admin: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ListServices handles GET /api/admin/services?category=...
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		raw = string(catalog.DefaultCategory)
	}
	category, err := catalog.ParseCategory(raw)
	if err != nil {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}

	if _, err := h.editor.List(r.Context(), operator(r), category); err != nil {
		writeError(w, err)
		return
	}

	h.writeState(w, operator(r))
}

// GetState handles GET /api/admin/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, operator(r))
}

// StartEdit handles POST /api/admin/services/{id}/edit
func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.StartEdit(operator(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// StartCreate handles POST /api/admin/services/new
func (h *Handler) StartCreate(w http.ResponseWriter, r *http.Request) {
	h.editor.StartCreate(operator(r))
	h.writeState(w, operator(r))
}

// CancelDraft handles POST /api/admin/draft/cancel
func (h *Handler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	h.editor.Cancel(operator(r))
	h.writeState(w, operator(r))
}

// PatchDraft handles PATCH /api/admin/draft
func (h *Handler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	var patch DraftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.editor.ApplyPatch(operator(r), patch); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// SaveDraft handles POST /api/admin/draft/save. An editing draft updates the
// record; a creation draft inserts a new one.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	op := operator(r)
	mode, _, _, _ := h.editor.State(op)

	var err error
	switch mode {
	case ModeCreating:
		err = h.editor.Create(r.Context(), op)
	default:
		err = h.editor.Save(r.Context(), op)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, op)
}

type rowPatch struct {
	Size  *string     `json:"size"`
	Price interface{} `json:"price"`
	Value *string     `json:"value"`
}

func rowIndex(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["index"])
}

// AddSizeOption handles POST /api/admin/draft/size-options
func (h *Handler) AddSizeOption(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.AddSizeOption(operator(r)); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// UpdateSizeOption handles PUT /api/admin/draft/size-options/{index}
func (h *Handler) UpdateSizeOption(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		http.Error(w, "invalid row index", http.StatusBadRequest)
		return
	}

	var patch rowPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.editor.UpdateSizeOption(operator(r), index, patch.Size, patch.Price); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// RemoveSizeOption handles DELETE /api/admin/draft/size-options/{index}
func (h *Handler) RemoveSizeOption(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		http.Error(w, "invalid row index", http.StatusBadRequest)
		return
	}

	if err := h.editor.RemoveSizeOption(operator(r), index); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// AddFeature handles POST /api/admin/draft/features
func (h *Handler) AddFeature(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.AddFeature(operator(r)); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// SetFeature handles PUT /api/admin/draft/features/{index}
func (h *Handler) SetFeature(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		http.Error(w, "invalid row index", http.StatusBadRequest)
		return
	}

	var patch rowPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	value := ""
	if patch.Value != nil {
		value = *patch.Value
	}

	if err := h.editor.SetFeature(operator(r), index, value); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// RemoveFeature handles DELETE /api/admin/draft/features/{index}
func (h *Handler) RemoveFeature(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		http.Error(w, "invalid row index", http.StatusBadRequest)
		return
	}

	if err := h.editor.RemoveFeature(operator(r), index); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// DeleteService handles DELETE /api/admin/services/{id}?confirm=true
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := h.editor.Delete(r.Context(), operator(r), mux.Vars(r)["id"], confirmed); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}

// MoveService handles POST /api/admin/services/{id}/move
func (h *Handler) MoveService(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	dir, err := ParseDirection(req.Direction)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.editor.Move(r.Context(), operator(r), mux.Vars(r)["id"], dir); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, operator(r))
}
