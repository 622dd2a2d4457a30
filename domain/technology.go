package domain

// TechStatus is the lifecycle state of a tracked technology.
type TechStatus string

const (
	TechActive    TechStatus = "active"
	TechInactive  TechStatus = "inactive"
	TechPending   TechStatus = "pending"
	TechCompleted TechStatus = "completed"
)

// Valid reports whether s is one of the four known statuses.
func (s TechStatus) Valid() bool {
	switch s {
	case TechActive, TechInactive, TechPending, TechCompleted:
		return true
	}
	return false
}

// Technology is an entry in the disconnected bulk-editor demo. It lives
// in memory only; nothing here touches the backend.
type Technology struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      TechStatus `json:"status"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
}
