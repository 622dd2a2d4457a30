package social

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/store"
)

// Search matches posts by substring, client-side. The backend has no
// text index, so every search fetches the full collection ordered by
// recency and filters locally. Fine for the collection sizes this app
// sees; a text index is the upgrade path if that stops being true.
type Search struct {
	st  store.Store
	log *zap.Logger
}

var _ app.SearchService = (*Search)(nil)

func NewSearch(st store.Store, log *zap.Logger) *Search {
	return &Search{st: st, log: log}
}

// SearchPosts returns posts whose body or author name contains text,
// case-insensitively, newest first. Blank input short-circuits to nil.
func (s *Search) SearchPosts(ctx context.Context, text string) ([]domain.Post, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil, nil
	}

	docs, err := s.st.Query(ctx, store.Query{Collection: colPosts, OrderBy: "createdAt", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	var out []domain.Post
	for _, d := range docs {
		p := postFromDoc(d)
		if strings.Contains(strings.ToLower(p.Text), needle) ||
			strings.Contains(strings.ToLower(p.UserName), needle) {
			out = append(out, p)
		}
	}
	s.log.Debug("search", zap.String("query", needle), zap.Int("hits", len(out)), zap.Int("scanned", len(docs)))
	return out, nil
}
