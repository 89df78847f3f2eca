// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type SessionID string
type MessageID string
type ImageID string
type TimerID string

func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

func NewImageID() ImageID {
	return ImageID(uuid.New().String())
}

func NewTimerID() TimerID {
	return TimerID(uuid.New().String())
}
