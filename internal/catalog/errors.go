package catalog

import "errors"

// ErrNotFound is returned when an id does not match any stored service.
var ErrNotFound = errors.New("service not found")

// ErrInvalidCategory is returned for category labels outside the fixed set.
var ErrInvalidCategory = errors.New("unknown category")

// Kind classifies a store failure for the HTTP layer: listing failures turn
// into a page-level banner, mutation failures stay inline with the acting
// form and carry the store's message verbatim.
type Kind int

const (
	KindFetch Kind = iota
	KindMutation
)

// StoreError wraps a failure talking to the catalog store.
type StoreError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Message is the store's own error text, passed through to the operator
// untouched on mutation failures.
func (e *StoreError) Message() string {
	return e.Err.Error()
}

// IsFetch reports whether err is a listing/read failure.
func IsFetch(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindFetch
}

// IsMutation reports whether err is a create/update/delete/reorder failure.
func IsMutation(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindMutation
}

func fetchErr(op string, err error) error {
	return &StoreError{Kind: KindFetch, Op: op, Err: err}
}

func mutationErr(op string, err error) error {
	return &StoreError{Kind: KindMutation, Op: op, Err: err}
}
