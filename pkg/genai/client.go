package genai

import "context"

// ImageRequest carries the inputs of a single image generation or edit.
// Prompt may be empty only when Reference is set; the provider substitutes
// a default edit instruction in that case.
type ImageRequest struct {
	Prompt      string
	AspectRatio AspectRatio
	Reference   *Blob
}

// ChatStream is a lazy, single-pass, non-restartable sequence of stream
// events. Recv returns io.EOF once the stream is exhausted; any other error
// means the stream ended abnormally and no further events will arrive.
type ChatStream interface {
	Recv() (StreamEvent, error)
	Close() error
}

// Client defines the interface for a remote generative capability.
// Implementations handle protocol details such as request formatting,
// authentication, and response parsing. Clients never retry; retry policy
// belongs to the caller.
type Client interface {
	// GenerateImage issues a single-shot image generation request and
	// returns the result as a displayable data URI.
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)

	// StreamChat sends the ordered history plus a system instruction and
	// optional tool declarations, returning a stream of incremental events.
	StreamChat(ctx context.Context, history []Message, system string, tools []FunctionDecl) (ChatStream, error)

	// Synthesize converts text to raw 24 kHz mono PCM audio using the
	// named voice.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Config holds common configuration for generation clients.
type Config struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	ImageModel string
	TTSModel   string
	Voice      string
}
