// Package admin implements the draft-based catalog editor. Each operator
// gets an independent editing session: a snapshot of the last list they were
// shown plus at most one draft, either a deep copy of an existing record
// (editing) or a blank template (creating). Drafts live in memory only; the
// store is the sole source of truth and every successful mutation re-fetches
// the active category.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"poolside-catalog/internal/auth"
	"poolside-catalog/internal/catalog"

	"github.com/asaskevich/EventBus"
	"github.com/spf13/cast"
)

// DraftID is the sentinel id carried by a creation draft. It is never sent
// to the store.
const DraftID = "new"

var (
	ErrNoDraft         = errors.New("no draft in progress")
	ErrNotEditing      = errors.New("not editing a record")
	ErrNotCreating     = errors.New("not creating a record")
	ErrUnknownService  = errors.New("service not in current list")
	ErrRowOutOfRange   = errors.New("row index out of range")
	ErrConfirmRequired = errors.New("delete requires confirmation")
)

// Mode is the editor state for one operator.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
	ModeCreating
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeCreating:
		return "creating"
	default:
		return "viewing"
	}
}

// Direction of a reorder move.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// ParseDirection validates a raw move direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case MoveUp, MoveDown:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

type session struct {
	category catalog.Category
	list     []catalog.ServiceRecord
	mode     Mode
	draft    *catalog.ServiceRecord
}

// Editor owns the per-operator editing sessions.
type Editor struct {
	repo catalog.Repository

	mu       sync.Mutex
	sessions map[string]*session
}

// NewEditor builds an editor over the repository. When a bus is given, the
// editor drops an operator's session as soon as their sign-out event
// arrives; unsaved edits are lost with no warning.
func NewEditor(repo catalog.Repository, bus EventBus.Bus) *Editor {
	e := &Editor{
		repo:     repo,
		sessions: map[string]*session{},
	}
	if bus != nil {
		_ = bus.Subscribe(auth.TopicSessionRevoked, e.Drop)
	}
	return e
}

// ensure returns the operator's session, creating a fresh viewing session on
// the default category. Callers hold e.mu.
func (e *Editor) ensure(operator string) *session {
	s, ok := e.sessions[operator]
	if !ok {
		s = &session{category: catalog.DefaultCategory, list: []catalog.ServiceRecord{}}
		e.sessions[operator] = s
	}
	return s
}

// Drop discards the operator's session, drafts included.
func (e *Editor) Drop(operator string) {
	e.mu.Lock()
	delete(e.sessions, operator)
	e.mu.Unlock()
}

// List fetches one category from the store and snapshots it as the
// operator's rendered list. The snapshot is what reorder moves index into.
func (e *Editor) List(ctx context.Context, operator string, category catalog.Category) ([]catalog.ServiceRecord, error) {
	records, err := e.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	s := e.ensure(operator)
	s.category = category
	s.list = records
	e.mu.Unlock()

	return records, nil
}

// refresh re-fetches the operator's active category after a mutation.
func (e *Editor) refresh(ctx context.Context, operator string) error {
	e.mu.Lock()
	category := e.ensure(operator).category
	e.mu.Unlock()

	_, err := e.List(ctx, operator, category)
	return err
}

// State returns the operator's mode, draft copy, active category, and
// rendered list for the HTTP layer to serialize.
func (e *Editor) State(operator string) (Mode, *catalog.ServiceRecord, catalog.Category, []catalog.ServiceRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	var draft *catalog.ServiceRecord
	if s.draft != nil {
		c := s.draft.Clone()
		draft = &c
	}
	return s.mode, draft, s.category, s.list
}

// StartEdit deep-copies the target record from the rendered list into a
// draft, so in-progress edits never mutate the list shown alongside.
func (e *Editor) StartEdit(operator, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	for i := range s.list {
		if s.list[i].ID == id {
			draft := s.list[i].Clone()
			s.draft = &draft
			s.mode = ModeEditing
			return nil
		}
	}
	return ErrUnknownService
}

// StartCreate opens a blank creation draft: empty strings, zero price,
// empty rows, and the default creation category.
func (e *Editor) StartCreate(operator string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	s.draft = &catalog.ServiceRecord{
		ID:          DraftID,
		Category:    catalog.CategoryOpenings,
		SizeOptions: []catalog.SizeOption{},
		Features:    []string{},
	}
	s.mode = ModeCreating
}

// Cancel discards the draft unconditionally; nothing is persisted.
func (e *Editor) Cancel(operator string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	s.draft = nil
	s.mode = ModeViewing
}

// DraftPatch carries field updates for the in-memory draft. Price and order
// fields are loosely typed on purpose: whatever the form posts is coerced,
// and non-numeric input coerces to zero rather than being rejected.
type DraftPatch struct {
	Name          *string     `json:"name"`
	Description   *string     `json:"description"`
	BasePrice     interface{} `json:"base_price"`
	HideBasePrice *bool       `json:"hide_base_price"`
	ImageURL      *string     `json:"image_url"`
	Category      *string     `json:"category"`
	IsFeatured    *bool       `json:"is_featured"`
	DisplayOrder  interface{} `json:"display_order"`
}

// ApplyPatch updates the draft in place. The only validation is the closed
// category set; everything else is accepted as typed.
func (e *Editor) ApplyPatch(operator string, p DraftPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	if s.draft == nil {
		return ErrNoDraft
	}

	if p.Name != nil {
		s.draft.Name = *p.Name
	}
	if p.Description != nil {
		s.draft.Description = *p.Description
	}
	if p.BasePrice != nil {
		s.draft.BasePrice = cast.ToFloat64(p.BasePrice)
	}
	if p.HideBasePrice != nil {
		s.draft.HideBasePrice = *p.HideBasePrice
	}
	if p.ImageURL != nil {
		if *p.ImageURL == "" {
			s.draft.ImageURL = nil
		} else {
			v := *p.ImageURL
			s.draft.ImageURL = &v
		}
	}
	if p.Category != nil {
		category, err := catalog.ParseCategory(*p.Category)
		if err != nil {
			return err
		}
		s.draft.Category = category
	}
	if p.IsFeatured != nil {
		s.draft.IsFeatured = *p.IsFeatured
	}
	if p.DisplayOrder != nil {
		s.draft.DisplayOrder = cast.ToInt(p.DisplayOrder)
	}

	return nil
}

// AddSizeOption appends an empty price row to the draft.
func (e *Editor) AddSizeOption(operator string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	if s.draft == nil {
		return ErrNoDraft
	}
	s.draft.SizeOptions = append(s.draft.SizeOptions, catalog.SizeOption{})
	return nil
}

// UpdateSizeOption edits one price row in place by index.
func (e *Editor) UpdateSizeOption(operator string, index int, size *string, price interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	if s.draft == nil {
		return ErrNoDraft
	}
	if index < 0 || index >= len(s.draft.SizeOptions) {
		return ErrRowOutOfRange
	}

	if size != nil {
		s.draft.SizeOptions[index].Size = *size
	}
	if price != nil {
		s.draft.SizeOptions[index].Price = cast.ToFloat64(price)
	}
	return nil
}

// RemoveSizeOption deletes one price row by index.
func (e *Editor) RemoveSizeOption(operator string, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	if s.draft == nil {
		return ErrNoDraft
	}
	if index < 0 || index >= len(s.draft.SizeOptions) {
		return ErrRowOutOfRange
	}
	s.draft.SizeOptions = append(s.draft.SizeOptions[:index], s.draft.SizeOptions[index+1:]...)
	return nil
}

// AddFeature appends an empty included-item bullet to the draft.
func (e *Editor) AddFeature(operator string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	if s.draft == nil {
		return ErrNoDraft
	}
	s.draft.Features = append(s.draft.Features, "")
	return nil
}

// SetFeature edits one bullet in place by index.
func (e *Editor) SetFeature(operator string, index int, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	if s.draft == nil {
		return ErrNoDraft
	}
	if index < 0 || index >= len(s.draft.Features) {
		return ErrRowOutOfRange
	}
	s.draft.Features[index] = value
	return nil
}

// RemoveFeature deletes one bullet by index.
func (e *Editor) RemoveFeature(operator string, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.ensure(operator)
	if s.draft == nil {
		return ErrNoDraft
	}
	if index < 0 || index >= len(s.draft.Features) {
		return ErrRowOutOfRange
	}
	s.draft.Features = append(s.draft.Features[:index], s.draft.Features[index+1:]...)
	return nil
}

// Save persists an editing draft as a full overwrite of the editable field
// set, then discards the draft and re-fetches. On failure the draft and
// mode survive untouched so the operator can retry or cancel.
func (e *Editor) Save(ctx context.Context, operator string) error {
	e.mu.Lock()
	s := e.ensure(operator)
	if s.mode != ModeEditing || s.draft == nil {
		e.mu.Unlock()
		return ErrNotEditing
	}
	draft := s.draft.Clone()
	e.mu.Unlock()

	req := catalog.UpdateServiceRequest{
		Name:          &draft.Name,
		Description:   &draft.Description,
		BasePrice:     &draft.BasePrice,
		HideBasePrice: &draft.HideBasePrice,
		SizeOptions:   &draft.SizeOptions,
		Features:      &draft.Features,
		SetImageURL:   true,
		ImageURL:      draft.ImageURL,
		Category:      &draft.Category,
		IsFeatured:    &draft.IsFeatured,
		DisplayOrder:  &draft.DisplayOrder,
	}

	rec, err := e.repo.UpdateService(ctx, draft.ID, req)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("save %q: %w", draft.ID, catalog.ErrNotFound)
	}

	e.mu.Lock()
	s.draft = nil
	s.mode = ModeViewing
	e.mu.Unlock()

	return e.refresh(ctx, operator)
}

// Create persists a creation draft, minus the sentinel id, then discards it
// and re-fetches. On failure the draft stays editable.
func (e *Editor) Create(ctx context.Context, operator string) error {
	e.mu.Lock()
	s := e.ensure(operator)
	if s.mode != ModeCreating || s.draft == nil {
		e.mu.Unlock()
		return ErrNotCreating
	}
	draft := s.draft.Clone()
	e.mu.Unlock()

	req := catalog.CreateServiceRequest{
		Name:          draft.Name,
		Description:   draft.Description,
		BasePrice:     draft.BasePrice,
		HideBasePrice: draft.HideBasePrice,
		SizeOptions:   draft.SizeOptions,
		Features:      draft.Features,
		ImageURL:      draft.ImageURL,
		Category:      draft.Category,
		IsFeatured:    draft.IsFeatured,
		DisplayOrder:  draft.DisplayOrder,
	}

	if _, err := e.repo.CreateService(ctx, req); err != nil {
		return err
	}

	e.mu.Lock()
	s.draft = nil
	s.mode = ModeViewing
	e.mu.Unlock()

	return e.refresh(ctx, operator)
}

// Delete hard-deletes a record after explicit confirmation, then re-fetches
// regardless of the delete's outcome. There is no optimistic state to roll
// back.
func (e *Editor) Delete(ctx context.Context, operator, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmRequired
	}

	delErr := e.repo.DeleteService(ctx, id)
	refreshErr := e.refresh(ctx, operator)

	if delErr != nil {
		return delErr
	}
	return refreshErr
}

// Move swaps the record's display order with its neighbor in the rendered
// list, then re-fetches. At either boundary it is a no-op and no store call
// is issued.
func (e *Editor) Move(ctx context.Context, operator, id string, dir Direction) error {
	e.mu.Lock()
	s := e.ensure(operator)

	index := -1
	for i := range s.list {
		if s.list[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		e.mu.Unlock()
		return ErrUnknownService
	}

	if (dir == MoveUp && index == 0) || (dir == MoveDown && index == len(s.list)-1) {
		e.mu.Unlock()
		return nil
	}

	swapIndex := index + 1
	if dir == MoveUp {
		swapIndex = index - 1
	}
	a := s.list[index].Clone()
	b := s.list[swapIndex].Clone()
	e.mu.Unlock()

	if err := e.repo.SwapDisplayOrder(ctx, a, b); err != nil {
		// The swap may have half-applied; the re-fetch below is what shows
		// the true state, but the operator still sees the failure.
		if rerr := e.refresh(ctx, operator); rerr != nil {
			return rerr
		}
		return err
	}

	return e.refresh(ctx, operator)
}
