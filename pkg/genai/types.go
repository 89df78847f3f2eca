package genai

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Blob is an inlined binary payload, base64-encoded.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part is a closed variant of message content: exactly one of Text or
// InlineData is set.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// TextPart returns a Part carrying plain text.
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart returns a Part carrying inlined image data.
func InlinePart(mimeType, data string) Part {
	return Part{InlineData: &Blob{MIMEType: mimeType, Data: data}}
}

// Valid reports whether the part carries exactly one kind of content.
func (p Part) Valid() bool {
	return (p.Text != "") != (p.InlineData != nil)
}

// Message is one entry of an ordered chat history sent to the model.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// FunctionDecl describes a callable capability advertised to the model.
type FunctionDecl struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// FunctionCall is a structured capability invocation requested by the model.
type FunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// StreamEvent is one increment of a streamed chat response. A single event
// may carry a text fragment, function calls, or both.
type StreamEvent struct {
	Text          string
	FunctionCalls []FunctionCall
}

// AspectRatio describes the width:height proportion of a generated image.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectTall      AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

// AspectRatios lists every supported ratio.
var AspectRatios = []AspectRatio{
	AspectSquare, AspectPortrait, AspectLandscape, AspectTall, AspectWide,
}

// Valid reports whether the ratio is one of the supported values.
func (r AspectRatio) Valid() bool {
	for _, v := range AspectRatios {
		if r == v {
			return true
		}
	}
	return false
}

// GenerationError is returned when the remote capability fails or its
// response carries no usable payload.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
