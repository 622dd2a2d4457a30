// Package store defines the document-database, auth, and blob-storage
// boundaries the client is written against. The hosted backend
// (infra/pulsebase) and the local emulator (infra/memstore) both satisfy
// these interfaces; everything above them is backend-agnostic.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("store: document not found")

// Filter is a single equality constraint on a query.
type Filter struct {
	Field string
	Value any
}

// Query selects an ordered subset of a collection. Ordering is stable:
// documents with equal order-field values keep store-assigned order.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
}

// Where returns a copy of q with an equality filter appended.
func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// Snapshot is one full delivery of a live query's current result set.
// Live queries always re-deliver the whole matching set, never deltas.
type Snapshot struct {
	Docs []Document
}

// CancelFunc releases a subscription. Safe to call more than once.
type CancelFunc func()

// UpdateOp is the kind of mutation applied to a single field.
type UpdateOp int

const (
	// OpSet overwrites the field with Update.Value.
	OpSet UpdateOp = iota
	// OpIncrement atomically adds Update.Value (an int64) to the field.
	OpIncrement
	// OpArrayUnion atomically appends Update.Value if not already present.
	OpArrayUnion
	// OpArrayRemove atomically removes all occurrences of Update.Value.
	OpArrayRemove
	// OpServerTimestamp sets the field to the backend's current time.
	OpServerTimestamp
)

// Update is one field mutation inside an atomic document update.
type Update struct {
	Field string
	Op    UpdateOp
	Value any
}

// Set overwrites field with value.
func Set(field string, value any) Update {
	return Update{Field: field, Op: OpSet, Value: value}
}

// Increment atomically adds delta to a numeric field.
func Increment(field string, delta int64) Update {
	return Update{Field: field, Op: OpIncrement, Value: delta}
}

// ArrayUnion atomically adds value to an array field if absent. This is
// a true set-add on the backend, not a read-modify-write.
func ArrayUnion(field string, value any) Update {
	return Update{Field: field, Op: OpArrayUnion, Value: value}
}

// ArrayRemove atomically removes value from an array field.
func ArrayRemove(field string, value any) Update {
	return Update{Field: field, Op: OpArrayRemove, Value: value}
}

// ServerTimestamp sets field to the backend's clock at commit time.
func ServerTimestamp(field string) Update {
	return Update{Field: field, Op: OpServerTimestamp}
}

// serverTime is the sentinel understood in Add/Set field maps.
type serverTime struct{}

// ServerTime marks a field in Add/Set to be stamped by the backend.
var ServerTime serverTime

// Tx is the handle passed to a transaction function. All reads happen
// before writes; the backend applies the write set atomically or not at
// all. Returning an error from the function aborts the transaction.
type Tx interface {
	Get(collection, id string) (Document, error)
	Update(collection, id string, updates ...Update) error
	Delete(collection, id string) error
}

// Store is the document database boundary.
type Store interface {
	// Add creates a document with a generated ID and returns it.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Get fetches one document, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Set writes fields to a document, creating it if needed. With
	// merge, absent fields are left untouched.
	Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error

	// Update applies the given field mutations atomically to one document.
	Update(ctx context.Context, collection, id string, updates ...Update) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Query runs a one-shot ordered/filtered read.
	Query(ctx context.Context, q Query) ([]Document, error)

	// Subscribe establishes a live query. fn receives the full current
	// result set immediately and again after every matching change, from
	// a single goroutine per subscription, until cancelled.
	Subscribe(q Query, fn func(Snapshot)) (CancelFunc, error)

	// RunTransaction executes fn atomically against the store.
	RunTransaction(ctx context.Context, fn func(Tx) error) error
}
