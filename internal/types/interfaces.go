// internal/types/interfaces.go
package types

// SessionStore owns ChatSession entities and their committed message
// sequences. Every mutating call persists the full collection write-through.
type SessionStore interface {
	Upsert(id SessionID, messages []ChatMessage, title string) error
	Get(id SessionID) (*ChatSession, bool)
	List() []*ChatSession
	Remove(id SessionID) error
	Active() SessionID
	SetActive(id SessionID)
}

// GalleryStore owns GeneratedImage entities.
type GalleryStore interface {
	Add(img *GeneratedImage) error
	Remove(id ImageID) error
	List() []*GeneratedImage
}

// TimerCreator starts new countdown timers. Each call creates an
// independent timer; there is no deduplication.
type TimerCreator interface {
	Create(label string, seconds int) *AppTimer
}
