package pulsebase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/r3labs/sse/v2"

	"github.com/pulsefeed/pulse/store"
)

// authTransport injects the API key and the current session token on
// every request. Tokens rotate across a subscription's lifetime, so
// the value is read at connect time, not captured when Subscribe runs.
type authTransport struct {
	apiKey string
	tokens TokenProvider
	next   http.RoundTripper
}

func (t authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Api-Key", t.apiKey)
	if token := t.tokens.SessionToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.next.RoundTrip(req)
}

// Subscribe implements store.Store. Live queries ride server-sent
// events: the listen endpoint replays the full matching set as one
// "snapshot" event per change, which is exactly the boundary contract.
// r3labs/sse reconnects with backoff on its own; after a reconnect the
// server replays the current set, so a dropped connection only delays
// snapshots, never loses state.
func (s *Store) Subscribe(q store.Query, fn func(store.Snapshot)) (store.CancelFunc, error) {
	encoded, err := json.Marshal(encodeQuery(q))
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	listenURL := s.client.baseURL + collectionPath(q.Collection) + ":listen?query=" +
		url.QueryEscape(base64.URLEncoding.EncodeToString(encoded))

	client := sse.NewClient(listenURL)
	client.Connection = &http.Client{Transport: authTransport{
		apiKey: s.client.apiKey,
		tokens: s.client.tokens,
		next:   http.DefaultTransport,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Blocks until ctx is cancelled; events arrive on this goroutine,
		// giving the per-subscription ordering the contract requires.
		_ = client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
			if len(msg.Data) == 0 {
				return
			}
			var payload struct {
				Documents []wireDocument `json:"documents"`
			}
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				return
			}
			fn(store.Snapshot{Docs: decodeDocuments(payload.Documents)})
		})
	}()

	return func() { cancel() }, nil
}
