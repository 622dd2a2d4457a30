package app

import "github.com/pulsefeed/pulse/domain"

// TechnologyService backs the disconnected bulk-editor demo: an
// in-memory technology list with bulk status reassignment and JSON
// export/import. No backend calls.
type TechnologyService interface {
	// List returns the current technologies, grouped order preserved.
	List() []domain.Technology

	// BulkSetStatus assigns status to every listed ID and returns how
	// many entries actually changed.
	BulkSetStatus(ids []string, status domain.TechStatus) (int, error)

	// Export serializes the list to the versioned JSON exchange format.
	Export() ([]byte, error)

	// Import replaces the list from an export file. Every element must
	// validate or the whole batch is rejected with no partial effect.
	Import(data []byte) (int, error)
}
