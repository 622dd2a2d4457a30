package tech

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/domain"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s := New(zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestBulkSetStatus(t *testing.T) {
	s := newService(t)

	changed, err := s.BulkSetStatus([]string{"tech-1", "tech-4", "nope"}, domain.TechCompleted)
	require.NoError(t, err)
	require.Equal(t, 2, changed, "unknown IDs are ignored")

	byID := make(map[string]domain.Technology)
	for _, tech := range s.List() {
		byID[tech.ID] = tech
	}
	require.Equal(t, domain.TechCompleted, byID["tech-1"].Status)
	require.Equal(t, domain.TechCompleted, byID["tech-4"].Status)
	require.Equal(t, domain.TechActive, byID["tech-2"].Status, "unlisted entries untouched")
}

func TestBulkSetStatusCountsOnlyChanges(t *testing.T) {
	s := newService(t)
	changed, err := s.BulkSetStatus([]string{"tech-1"}, domain.TechActive)
	require.NoError(t, err)
	require.Zero(t, changed, "already active")
}

func TestBulkSetStatusRejectsInvalid(t *testing.T) {
	s := newService(t)
	_, err := s.BulkSetStatus([]string{"tech-1"}, domain.TechStatus("archived"))
	require.Error(t, err)
	require.Equal(t, domain.TechActive, s.List()[0].Status)
}

func TestExportShape(t *testing.T) {
	s := newService(t)
	data, err := s.Export()
	require.NoError(t, err)

	var f exportFile
	require.NoError(t, json.Unmarshal(data, &f))
	require.Equal(t, ExportVersion, f.Version)
	require.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), f.ExportDate)
	require.Len(t, f.Technologies, len(s.List()))
	require.Equal(t, len(s.List()), f.Metadata.TotalTechnologies)
	require.Equal(t, []string{"database", "infrastructure", "language", "search", "transport"},
		f.Metadata.Categories)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newService(t)
	_, err := s.BulkSetStatus([]string{"tech-2"}, domain.TechInactive)
	require.NoError(t, err)
	data, err := s.Export()
	require.NoError(t, err)

	fresh := newService(t)
	n, err := fresh.Import(data)
	require.NoError(t, err)
	require.Equal(t, len(s.List()), n)
	require.Equal(t, s.List(), fresh.List())
}

func TestImportRejectsWholeBatch(t *testing.T) {
	s := newService(t)
	before := s.List()

	tests := []struct {
		name string
		list []domain.Technology
	}{
		{"missing id", []domain.Technology{{Name: "X", Status: domain.TechActive, Category: "c"}}},
		{"missing name", []domain.Technology{{ID: "a", Status: domain.TechActive, Category: "c"}}},
		{"invalid status", []domain.Technology{{ID: "a", Name: "X", Status: "bogus", Category: "c"}}},
		{"missing category", []domain.Technology{{ID: "a", Name: "X", Status: domain.TechActive}}},
		{"duplicate id", []domain.Technology{
			{ID: "a", Name: "X", Status: domain.TechActive, Category: "c"},
			{ID: "a", Name: "Y", Status: domain.TechActive, Category: "c"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// One valid entry alongside the bad one: still all-or-nothing.
			list := append([]domain.Technology{
				{ID: "ok", Name: "Fine", Status: domain.TechActive, Category: "c"},
			}, tt.list...)
			data, err := json.Marshal(exportFile{Version: ExportVersion, Technologies: list})
			require.NoError(t, err)

			_, err = s.Import(data)
			require.Error(t, err)
			require.Equal(t, before, s.List(), "no partial effect")
		})
	}
}

func TestImportRejectsVersionAndGarbage(t *testing.T) {
	s := newService(t)

	_, err := s.Import([]byte("not json"))
	require.Error(t, err)

	data, err := json.Marshal(exportFile{Version: "2.0"})
	require.NoError(t, err)
	_, err = s.Import(data)
	require.Error(t, err)
}

func TestImportEmptyListAllowed(t *testing.T) {
	s := newService(t)
	data, err := json.Marshal(exportFile{Version: ExportVersion})
	require.NoError(t, err)
	n, err := s.Import(data)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, s.List())
}
