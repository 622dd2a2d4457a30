package pulsebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pulsefeed/pulse/store"
)

// Blobs implements store.BlobClient over the Pulsebase blob endpoints.
// Uploads are raw bytes, not JSON, so this bypasses Client.do.
type Blobs struct {
	client *Client
}

var _ store.BlobClient = (*Blobs)(nil)

// NewBlobs creates a blob client backed by client.
func NewBlobs(client *Client) *Blobs {
	return &Blobs{client: client}
}

// Upload implements store.BlobClient.
func (b *Blobs) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	uploadURL := b.client.baseURL + "/v1/blobs?name=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("X-Api-Key", b.client.apiKey)
	if token := b.client.tokens.SessionToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := b.client.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		_ = json.Unmarshal(body, &ae)
		return "", &StatusError{Status: resp.StatusCode, Code: ae.Error.Code, Message: ae.Error.Message}
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parsing upload response: %w", err)
	}
	return out.URL, nil
}

// Delete implements store.BlobClient. Unknown URLs are not an error.
func (b *Blobs) Delete(ctx context.Context, blobURL string) error {
	err := b.client.do(ctx, http.MethodDelete, "/v1/blobs?url="+url.QueryEscape(blobURL), nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return nil
	}
	return err
}
