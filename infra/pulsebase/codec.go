package pulsebase

import (
	"fmt"
	"time"

	"github.com/pulsefeed/pulse/store"
)

// Wire encoding for field values. Most values travel as plain JSON;
// timestamps and the server-timestamp sentinel need a tag because JSON
// has no time type:
//
//	{"$time": "2024-06-01T12:00:00Z"}
//	{"$serverTimestamp": true}
func encodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return map[string]any{"$time": t.UTC().Format(time.RFC3339Nano)}
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = encodeValue(e)
		}
		return out
	}
	if v == any(store.ServerTime) {
		return map[string]any{"$serverTimestamp": true}
	}
	return v
}

func encodeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = encodeValue(v)
	}
	return out
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if raw, ok := t["$time"].(string); ok && len(t) == 1 {
			if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				return ts
			}
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = decodeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decodeValue(e)
		}
		return out
	}
	return v
}

// wireDocument is a document on the wire.
type wireDocument struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

func (w wireDocument) document() store.Document {
	fields := make(map[string]any, len(w.Fields))
	for k, v := range w.Fields {
		fields[k] = decodeValue(v)
	}
	return store.Document{ID: w.ID, Fields: fields}
}

func decodeDocuments(ws []wireDocument) []store.Document {
	docs := make([]store.Document, len(ws))
	for i, w := range ws {
		docs[i] = w.document()
	}
	return docs
}

// wireUpdate is one field mutation on the wire.
type wireUpdate struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value,omitempty"`
}

func encodeUpdates(updates []store.Update) ([]wireUpdate, error) {
	out := make([]wireUpdate, len(updates))
	for i, u := range updates {
		var op string
		switch u.Op {
		case store.OpSet:
			op = "set"
		case store.OpIncrement:
			op = "increment"
		case store.OpArrayUnion:
			op = "arrayUnion"
		case store.OpArrayRemove:
			op = "arrayRemove"
		case store.OpServerTimestamp:
			op = "serverTimestamp"
		default:
			return nil, fmt.Errorf("unknown update op %d", u.Op)
		}
		out[i] = wireUpdate{Field: u.Field, Op: op, Value: encodeValue(u.Value)}
	}
	return out, nil
}

// wireQuery is a query on the wire.
type wireQuery struct {
	Filters []wireFilter `json:"filters,omitempty"`
	OrderBy string       `json:"orderBy,omitempty"`
	Desc    bool         `json:"desc,omitempty"`
}

type wireFilter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func encodeQuery(q store.Query) wireQuery {
	wq := wireQuery{OrderBy: q.OrderBy, Desc: q.Desc}
	for _, f := range q.Filters {
		wq.Filters = append(wq.Filters, wireFilter{Field: f.Field, Value: encodeValue(f.Value)})
	}
	return wq
}
