// internal/types/models.go
package types

import (
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Attachment is an image carried by a chat message, base64-encoded.
type Attachment struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// ChatMessage is one entry of a conversation. Finalized messages are
// immutable; the in-progress assistant message is patched in place by ID
// while a response streams.
type ChatMessage struct {
	ID        MessageID   `json:"id"`
	Role      Role        `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
	Image     *Attachment `json:"image,omitempty"`
}

// ChatSession is a persisted conversation with an ordered message history.
type ChatSession struct {
	ID        SessionID     `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	Timestamp time.Time     `json:"timestamp"`
}

// ImageKind distinguishes fresh generations from edits of a reference image.
type ImageKind string

const (
	ImageGeneration ImageKind = "generation"
	ImageEdit       ImageKind = "edit"
)

// GeneratedImage is a gallery entry. Created only on successful generation,
// never mutated.
type GeneratedImage struct {
	ID        ImageID   `json:"id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`
	Type      ImageKind `json:"type"`
}

// AppTimer is a named countdown created by a tool call. Remaining is
// recomputed from StartTime on every tick; once it reaches zero IsActive
// flips to false and never flips back.
type AppTimer struct {
	ID        TimerID   `json:"id"`
	Label     string    `json:"label"`
	Duration  int       `json:"duration"`
	Remaining int       `json:"remaining"`
	IsActive  bool      `json:"isActive"`
	StartTime time.Time `json:"startTime"`
}

// User is the cosmetic local identity. It affects greeting text only and
// carries no access-control semantics.
type User struct {
	Name string `json:"name"`
}
