package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type object struct {
	data        []byte
	contentType string
}

// Blobs is an in-memory store.BlobClient.
type Blobs struct {
	mu      sync.Mutex
	objects map[string]object
}

// NewBlobs creates an empty in-memory blob store.
func NewBlobs() *Blobs {
	return &Blobs{objects: make(map[string]object)}
}

// Upload implements store.BlobClient.
func (b *Blobs) Upload(_ context.Context, name string, data []byte, contentType string) (string, error) {
	url := "mem://blobs/" + uuid.NewString() + "/" + name
	b.mu.Lock()
	b.objects[url] = object{data: append([]byte(nil), data...), contentType: contentType}
	b.mu.Unlock()
	return url, nil
}

// Delete implements store.BlobClient. Unknown URLs are ignored, matching
// the best-effort delete the profile editor relies on.
func (b *Blobs) Delete(_ context.Context, url string) error {
	b.mu.Lock()
	delete(b.objects, url)
	b.mu.Unlock()
	return nil
}

// Get returns a stored object, for tests.
func (b *Blobs) Get(url string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[url]
	return obj.data, ok
}
