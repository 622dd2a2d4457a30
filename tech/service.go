// Package tech implements the disconnected technology bulk editor: an
// in-memory list with bulk status reassignment and a versioned JSON
// exchange format. It deliberately makes no backend calls.
package tech

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
)

// ExportVersion is the exchange-format version this build reads and writes.
const ExportVersion = "1.0"

// exportFile is the JSON exchange shape.
type exportFile struct {
	Version      string              `json:"version"`
	ExportDate   time.Time           `json:"exportDate"`
	Technologies []domain.Technology `json:"technologies"`
	Metadata     exportMetadata      `json:"metadata"`
}

type exportMetadata struct {
	TotalTechnologies int      `json:"totalTechnologies"`
	Categories        []string `json:"categories"`
}

// Service holds the technology list. Safe for concurrent use.
type Service struct {
	log *zap.Logger
	now func() time.Time

	mu   sync.Mutex
	list []domain.Technology
}

var _ app.TechnologyService = (*Service)(nil)

// New creates a service seeded with the demo data set.
func New(log *zap.Logger) *Service {
	return &Service{log: log, now: time.Now, list: seed()}
}

func seed() []domain.Technology {
	return []domain.Technology{
		{ID: "tech-1", Name: "Go", Status: domain.TechActive, Category: "language"},
		{ID: "tech-2", Name: "PostgreSQL", Status: domain.TechActive, Category: "database"},
		{ID: "tech-3", Name: "Redis", Status: domain.TechPending, Category: "database", Description: "evaluating for session cache"},
		{ID: "tech-4", Name: "Kubernetes", Status: domain.TechPending, Category: "infrastructure"},
		{ID: "tech-5", Name: "Terraform", Status: domain.TechActive, Category: "infrastructure"},
		{ID: "tech-6", Name: "GraphQL", Status: domain.TechInactive, Category: "transport", Description: "dropped after the gateway rewrite"},
		{ID: "tech-7", Name: "gRPC", Status: domain.TechActive, Category: "transport"},
		{ID: "tech-8", Name: "Elasticsearch", Status: domain.TechCompleted, Category: "search"},
	}
}

// List returns a copy of the current technologies in stored order.
func (s *Service) List() []domain.Technology {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Technology, len(s.list))
	copy(out, s.list)
	return out
}

// BulkSetStatus assigns status to every listed ID and returns how many
// entries actually changed. Unknown IDs are ignored.
func (s *Service) BulkSetStatus(ids []string, status domain.TechStatus) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("invalid status %q", status)
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	s.mu.Lock()
	changed := 0
	for i := range s.list {
		if want[s.list[i].ID] && s.list[i].Status != status {
			s.list[i].Status = status
			changed++
		}
	}
	s.mu.Unlock()

	s.log.Info("bulk status change", zap.Int("requested", len(ids)),
		zap.Int("changed", changed), zap.String("status", string(status)))
	return changed, nil
}

// Export serializes the list to the versioned exchange format.
func (s *Service) Export() ([]byte, error) {
	s.mu.Lock()
	list := make([]domain.Technology, len(s.list))
	copy(list, s.list)
	s.mu.Unlock()

	f := exportFile{
		Version:      ExportVersion,
		ExportDate:   s.now().UTC(),
		Technologies: list,
		Metadata: exportMetadata{
			TotalTechnologies: len(list),
			Categories:        categories(list),
		},
	}
	return json.MarshalIndent(f, "", "  ")
}

func categories(list []domain.Technology) []string {
	set := make(map[string]bool, len(list))
	for _, t := range list {
		if t.Category != "" {
			set[t.Category] = true
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Import replaces the list from an export file. Every element must
// validate or the whole batch is rejected with no partial effect.
func (s *Service) Import(data []byte) (int, error) {
	var f exportFile
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse import: %w", err)
	}
	if f.Version != ExportVersion {
		return 0, fmt.Errorf("unsupported export version %q", f.Version)
	}

	seen := make(map[string]bool, len(f.Technologies))
	for i, t := range f.Technologies {
		switch {
		case t.ID == "":
			return 0, fmt.Errorf("entry %d: missing id", i)
		case seen[t.ID]:
			return 0, fmt.Errorf("entry %d: duplicate id %q", i, t.ID)
		case t.Name == "":
			return 0, fmt.Errorf("entry %d (%s): missing name", i, t.ID)
		case !t.Status.Valid():
			return 0, fmt.Errorf("entry %d (%s): invalid status %q", i, t.ID, t.Status)
		case t.Category == "":
			return 0, fmt.Errorf("entry %d (%s): missing category", i, t.ID)
		}
		seen[t.ID] = true
	}

	s.mu.Lock()
	s.list = append([]domain.Technology(nil), f.Technologies...)
	s.mu.Unlock()

	s.log.Info("import applied", zap.Int("entries", len(f.Technologies)))
	return len(f.Technologies), nil
}
