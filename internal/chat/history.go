package chat

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/user/prakharai/internal/types"
	"github.com/user/prakharai/pkg/genai"
)

// defaultImageInstruction substitutes for empty text on a message carrying
// an attachment. The chat capability rejects a message with neither text
// nor image, so every entry must supply non-empty text.
const defaultImageInstruction = "Describe this image"

// imageTokenCost approximates the budget consumed by an inlined image.
const imageTokenCost = 1000

// HistoryBuilder shapes a conversation's message sequence into the request
// form required by the generation client, keeping the newest messages that
// fit the token budget.
type HistoryBuilder struct {
	tokenizer *tiktoken.Tiktoken
	maxTokens int
	reserve   int
}

// NewHistoryBuilder creates a builder with the given token budget. Gemini
// models have no tiktoken mapping, so cl100k_base serves as an
// approximation; if no encoding can be loaded the builder falls back to a
// bytes/4 estimate rather than failing.
func NewHistoryBuilder(maxTokens, reserve int) *HistoryBuilder {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &HistoryBuilder{
		tokenizer: enc,
		maxTokens: maxTokens,
		reserve:   reserve,
	}
}

func (b *HistoryBuilder) countTokens(text string) int {
	if b.tokenizer == nil {
		return len(text)/4 + 1
	}
	return len(b.tokenizer.Encode(text, nil, nil))
}

// Build converts the message sequence to request form, preserving order.
// When the full history exceeds the budget, the oldest messages are
// dropped; the newest message is always kept.
func (b *HistoryBuilder) Build(messages []types.ChatMessage) []genai.Message {
	budget := b.maxTokens - b.reserve

	// Walk newest to oldest to find the cut point.
	start := len(messages)
	used := 0
	for i := len(messages) - 1; i >= 0; i-- {
		cost := b.countTokens(messageText(messages[i]))
		if messages[i].Image != nil {
			cost += imageTokenCost
		}
		if used+cost > budget && start < len(messages) {
			break
		}
		used += cost
		start = i
	}

	out := make([]genai.Message, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		if msg.Text == "" && msg.Image == nil {
			// A message with neither text nor image (e.g. an empty
			// completion from an earlier turn) cannot be sent.
			continue
		}
		entry := genai.Message{Role: genai.Role(msg.Role)}
		if msg.Image != nil {
			entry.Parts = append(entry.Parts, genai.InlinePart(msg.Image.MIMEType, msg.Image.Data))
		}
		entry.Parts = append(entry.Parts, genai.TextPart(messageText(msg)))
		out = append(out, entry)
	}
	return out
}

// messageText returns the request text for a message, substituting the
// default instruction when an image-only message has no text.
func messageText(msg types.ChatMessage) string {
	if msg.Text != "" {
		return msg.Text
	}
	if msg.Image != nil {
		return defaultImageInstruction
	}
	return msg.Text
}
