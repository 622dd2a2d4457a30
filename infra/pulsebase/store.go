package pulsebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pulsefeed/pulse/store"
)

// Store implements store.Store over the Pulsebase document API.
type Store struct {
	client *Client
}

var _ store.Store = (*Store)(nil)

// NewStore creates a document store backed by client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func collectionPath(collection string) string {
	return "/v1/collections/" + url.PathEscape(collection)
}

func documentPath(collection, id string) string {
	return collectionPath(collection) + "/documents/" + url.PathEscape(id)
}

// notFound converts the API's 404 into the portable sentinel.
func notFound(err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return store.ErrNotFound
	}
	return err
}

// Add implements store.Store.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := s.client.do(ctx, http.MethodPost, collectionPath(collection)+"/documents",
		map[string]any{"fields": encodeFields(fields)}, &out)
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return out.ID, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var out wireDocument
	err := s.client.do(ctx, http.MethodGet, documentPath(collection, id), nil, &out)
	if err != nil {
		return store.Document{}, notFound(err)
	}
	return out.document(), nil
}

// Set implements store.Store.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	path := documentPath(collection, id)
	if merge {
		path += "?merge=true"
	}
	err := s.client.do(ctx, http.MethodPut, path,
		map[string]any{"fields": encodeFields(fields)}, nil)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, collection, id string, updates ...store.Update) error {
	wire, err := encodeUpdates(updates)
	if err != nil {
		return err
	}
	err = s.client.do(ctx, http.MethodPatch, documentPath(collection, id),
		map[string]any{"updates": wire}, nil)
	if err != nil {
		if err := notFound(err); errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete implements store.Store. The API treats deleting an absent
// document as success, matching the boundary contract.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	err := s.client.do(ctx, http.MethodDelete, documentPath(collection, id), nil, nil)
	if err != nil && !errors.Is(notFound(err), store.ErrNotFound) {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Query implements store.Store.
func (s *Store) Query(ctx context.Context, q store.Query) ([]store.Document, error) {
	var out struct {
		Documents []wireDocument `json:"documents"`
	}
	err := s.client.do(ctx, http.MethodPost, collectionPath(q.Collection)+":query",
		encodeQuery(q), &out)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	return decodeDocuments(out.Documents), nil
}

// tx buffers writes client-side; reads go through the open transaction
// so the server can check conflicts at commit.
type tx struct {
	s    *Store
	ctx  context.Context
	id   string
	ops  []wireTxOp
	fail error
}

type wireTxOp struct {
	Op         string       `json:"op"` // "update" or "delete"
	Collection string       `json:"collection"`
	ID         string       `json:"id"`
	Updates    []wireUpdate `json:"updates,omitempty"`
}

func (t *tx) Get(collection, id string) (store.Document, error) {
	var out wireDocument
	err := t.s.client.do(t.ctx, http.MethodGet,
		documentPath(collection, id)+"?tx="+url.QueryEscape(t.id), nil, &out)
	if err != nil {
		return store.Document{}, notFound(err)
	}
	return out.document(), nil
}

func (t *tx) Update(collection, id string, updates ...store.Update) error {
	wire, err := encodeUpdates(updates)
	if err != nil {
		t.fail = err
		return err
	}
	t.ops = append(t.ops, wireTxOp{Op: "update", Collection: collection, ID: id, Updates: wire})
	return nil
}

func (t *tx) Delete(collection, id string) error {
	t.ops = append(t.ops, wireTxOp{Op: "delete", Collection: collection, ID: id})
	return nil
}

// RunTransaction implements store.Store.
func (s *Store) RunTransaction(ctx context.Context, fn func(store.Tx) error) error {
	var begin struct {
		ID string `json:"id"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/v1/transactions", nil, &begin); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	t := &tx{s: s, ctx: ctx, id: begin.ID}
	if err := fn(t); err != nil {
		rollbackPath := "/v1/transactions/" + url.PathEscape(begin.ID)
		_ = s.client.do(ctx, http.MethodDelete, rollbackPath, nil, nil)
		return err
	}
	if t.fail != nil {
		return t.fail
	}

	commitPath := "/v1/transactions/" + url.PathEscape(begin.ID) + ":commit"
	if err := s.client.do(ctx, http.MethodPost, commitPath, map[string]any{"ops": t.ops}, nil); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
