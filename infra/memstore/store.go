// Package memstore is a local, in-memory implementation of the backend
// boundaries: document store with live queries, auth provider, and blob
// storage. It exists for offline runs and tests; semantics mirror the
// hosted backend, including atomic field transforms, transactions, and
// stable tie ordering.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsefeed/pulse/store"
)

type docrec struct {
	id     string
	fields map[string]any
	seq    int64 // insertion order, the tie-breaker for equal order keys
}

type collection struct {
	docs map[string]*docrec
}

type subscription struct {
	id    int
	query store.Query
	fn    func(store.Snapshot)
	ch    chan store.Snapshot
	done  chan struct{}
}

// Store is an in-memory store.Store. The zero value is not usable; call New.
type Store struct {
	mu      sync.Mutex
	cols    map[string]*collection
	subs    map[int]*subscription
	nextSub int
	nextSeq int64
	now     func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	s := &Store{
		cols: make(map[string]*collection),
		subs: make(map[int]*subscription),
		now:  time.Now,
	}
	return s
}

// SetClock overrides the server clock, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) col(name string) *collection {
	c, ok := s.cols[name]
	if !ok {
		c = &collection{docs: make(map[string]*docrec)}
		s.cols[name] = c
	}
	return c
}

// Add implements store.Store.
func (s *Store) Add(_ context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.putLocked(collection, id, s.resolveFields(fields), false)
	pending := s.snapshotsLocked(collection)
	s.mu.Unlock()
	deliver(pending)
	return id, nil
}

// Set implements store.Store.
func (s *Store) Set(_ context.Context, collection, id string, fields map[string]any, merge bool) error {
	s.mu.Lock()
	s.putLocked(collection, id, s.resolveFields(fields), merge)
	pending := s.snapshotsLocked(collection)
	s.mu.Unlock()
	deliver(pending)
	return nil
}

func (s *Store) putLocked(collection, id string, fields map[string]any, merge bool) {
	c := s.col(collection)
	rec, ok := c.docs[id]
	if !ok {
		s.nextSeq++
		rec = &docrec{id: id, fields: make(map[string]any), seq: s.nextSeq}
		c.docs[id] = rec
	} else if !merge {
		rec.fields = make(map[string]any)
	}
	for k, v := range fields {
		rec.fields[k] = v
	}
}

// resolveFields replaces the ServerTime sentinel with the store clock.
func (s *Store) resolveFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == any(store.ServerTime) {
			out[k] = s.now()
			continue
		}
		out[k] = v
	}
	return out
}

// Get implements store.Store.
func (s *Store) Get(_ context.Context, collection, id string) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.col(collection).docs[id]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return rec.document(), nil
}

// Update implements store.Store.
func (s *Store) Update(_ context.Context, collection, id string, updates ...store.Update) error {
	s.mu.Lock()
	rec, ok := s.col(collection).docs[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	s.applyLocked(rec, updates)
	pending := s.snapshotsLocked(collection)
	s.mu.Unlock()
	deliver(pending)
	return nil
}

func (s *Store) applyLocked(rec *docrec, updates []store.Update) {
	for _, u := range updates {
		switch u.Op {
		case store.OpSet:
			rec.fields[u.Field] = u.Value
		case store.OpIncrement:
			rec.fields[u.Field] = asInt64(rec.fields[u.Field]) + asInt64(u.Value)
		case store.OpArrayUnion:
			arr, _ := rec.fields[u.Field].([]any)
			if !slices.Contains(arr, u.Value) {
				rec.fields[u.Field] = append(arr, u.Value)
			}
		case store.OpArrayRemove:
			arr, _ := rec.fields[u.Field].([]any)
			out := make([]any, 0, len(arr))
			for _, v := range arr {
				if v != u.Value {
					out = append(out, v)
				}
			}
			rec.fields[u.Field] = out
		case store.OpServerTimestamp:
			rec.fields[u.Field] = s.now()
		}
	}
}

// Delete implements store.Store. Absent documents are ignored.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.col(collection).docs, id)
	pending := s.snapshotsLocked(collection)
	s.mu.Unlock()
	deliver(pending)
	return nil
}

// Query implements store.Store.
func (s *Store) Query(_ context.Context, q store.Query) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(q), nil
}

func (s *Store) queryLocked(q store.Query) []store.Document {
	c := s.col(q.Collection)
	recs := make([]*docrec, 0, len(c.docs))
	for _, rec := range c.docs {
		if matches(rec, q.Filters) {
			recs = append(recs, rec)
		}
	}
	// Base order is insertion order so equal keys keep store-assigned order.
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	if q.OrderBy != "" {
		field, desc := q.OrderBy, q.Desc
		sort.SliceStable(recs, func(i, j int) bool {
			less, equal := compareField(recs[i].fields[field], recs[j].fields[field])
			if equal {
				return false
			}
			if desc {
				return !less
			}
			return less
		})
	}
	docs := make([]store.Document, len(recs))
	for i, rec := range recs {
		docs[i] = rec.document()
	}
	return docs
}

// Subscribe implements store.Store. Each subscription gets its own
// delivery goroutine so callbacks for one subscription never interleave.
func (s *Store) Subscribe(q store.Query, fn func(store.Snapshot)) (store.CancelFunc, error) {
	sub := &subscription{
		query: q,
		fn:    fn,
		ch:    make(chan store.Snapshot, 64),
		done:  make(chan struct{}),
	}
	s.mu.Lock()
	s.nextSub++
	sub.id = s.nextSub
	s.subs[sub.id] = sub
	initial := store.Snapshot{Docs: s.queryLocked(q)}
	s.mu.Unlock()

	go func() {
		for {
			select {
			case snap := <-sub.ch:
				fn(snap)
			case <-sub.done:
				return
			}
		}
	}()
	sub.push(initial)

	var once bool
	return func() {
		s.mu.Lock()
		if !once {
			once = true
			delete(s.subs, sub.id)
			close(sub.done)
		}
		s.mu.Unlock()
	}, nil
}

func (sub *subscription) push(snap store.Snapshot) {
	select {
	case sub.ch <- snap:
	case <-sub.done:
	}
}

type delivery struct {
	sub  *subscription
	snap store.Snapshot
}

// snapshotsLocked recomputes result sets for every subscription watching
// the mutated collection. Delivery happens after the lock is released.
func (s *Store) snapshotsLocked(collection string) []delivery {
	var out []delivery
	for _, sub := range s.subs {
		if sub.query.Collection != collection {
			continue
		}
		out = append(out, delivery{sub: sub, snap: store.Snapshot{Docs: s.queryLocked(sub.query)}})
	}
	return out
}

func deliver(pending []delivery) {
	for _, d := range pending {
		d.sub.push(d.snap)
	}
}

func (rec *docrec) document() store.Document {
	fields := make(map[string]any, len(rec.fields))
	for k, v := range rec.fields {
		if arr, ok := v.([]any); ok {
			v = append([]any(nil), arr...)
		}
		fields[k] = v
	}
	return store.Document{ID: rec.id, Fields: fields}
}

func matches(rec *docrec, filters []store.Filter) bool {
	for _, f := range filters {
		if rec.fields[f.Field] != f.Value {
			return false
		}
	}
	return true
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// compareField orders two field values of the types the store holds.
// Mixed or unknown types compare as equal, falling back to insertion order.
func compareField(a, b any) (less, equal bool) {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			if av.Equal(bv) {
				return false, true
			}
			return av.Before(bv), false
		}
	case int64:
		if bv, ok := b.(int64); ok {
			if av == bv {
				return false, true
			}
			return av < bv, false
		}
	case string:
		if bv, ok := b.(string); ok {
			if av == bv {
				return false, true
			}
			return strings.Compare(av, bv) < 0, false
		}
	}
	return false, true
}
