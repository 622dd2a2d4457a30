package memstore

import (
	"context"

	"github.com/pulsefeed/pulse/store"
)

type txOp int

const (
	txUpdate txOp = iota
	txDelete
)

type txWrite struct {
	op         txOp
	collection string
	id         string
	updates    []store.Update
}

// tx buffers writes while the store lock is held; reads see committed
// state only (reads-before-writes discipline, as on the hosted backend).
type tx struct {
	s      *Store
	writes []txWrite
}

func (t *tx) Get(collection, id string) (store.Document, error) {
	rec, ok := t.s.col(collection).docs[id]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return rec.document(), nil
}

func (t *tx) Update(collection, id string, updates ...store.Update) error {
	if _, ok := t.s.col(collection).docs[id]; !ok {
		return store.ErrNotFound
	}
	t.writes = append(t.writes, txWrite{op: txUpdate, collection: collection, id: id, updates: updates})
	return nil
}

func (t *tx) Delete(collection, id string) error {
	t.writes = append(t.writes, txWrite{op: txDelete, collection: collection, id: id})
	return nil
}

// RunTransaction implements store.Store. The whole store is locked for
// the duration of fn, so the transaction is trivially serializable; an
// error from fn discards the buffered write set.
func (s *Store) RunTransaction(_ context.Context, fn func(store.Tx) error) error {
	s.mu.Lock()
	t := &tx{s: s}
	if err := fn(t); err != nil {
		s.mu.Unlock()
		return err
	}
	touched := make(map[string]struct{})
	for _, w := range t.writes {
		touched[w.collection] = struct{}{}
		switch w.op {
		case txUpdate:
			if rec, ok := s.col(w.collection).docs[w.id]; ok {
				s.applyLocked(rec, w.updates)
			}
		case txDelete:
			delete(s.col(w.collection).docs, w.id)
		}
	}
	var pending []delivery
	for collection := range touched {
		pending = append(pending, s.snapshotsLocked(collection)...)
	}
	s.mu.Unlock()
	deliver(pending)
	return nil
}
