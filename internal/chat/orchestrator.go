package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/user/prakharai/internal/store"
	"github.com/user/prakharai/internal/types"
	"github.com/user/prakharai/pkg/genai"
)

var (
	// ErrEmptyTurn is returned when a turn has neither text nor an
	// attached image. It never reaches the generation client.
	ErrEmptyTurn = errors.New("message text or image required")

	// ErrTurnInFlight is returned when a turn is already running for the
	// conversation.
	ErrTurnInFlight = errors.New("a turn is already in flight")
)

// fallbackReply is shown when the remote call fails before any fragment
// arrives.
const fallbackReply = "Something went wrong. Let's try that again."

// Conversation is the working copy of one chat. The orchestrator owns its
// message sequence exclusively for the duration of a turn; the ID stays
// empty until the first send binds the conversation to a session.
type Conversation struct {
	ID       types.SessionID
	Messages []types.ChatMessage

	guard *semaphore.Weighted
}

// NewConversation creates an unsaved conversation.
func NewConversation() *Conversation {
	return &Conversation{guard: semaphore.NewWeighted(1)}
}

// ResumeConversation creates a working copy over an existing session's
// messages.
func ResumeConversation(sess *types.ChatSession) *Conversation {
	msgs := make([]types.ChatMessage, len(sess.Messages))
	copy(msgs, sess.Messages)
	return &Conversation{
		ID:       sess.ID,
		Messages: msgs,
		guard:    semaphore.NewWeighted(1),
	}
}

// TurnOption configures optional behavior on a turn.
type TurnOption func(*turnHooks)

type turnHooks struct {
	onDelta        func(fragment string)
	onSessionBound func(id types.SessionID)
}

// WithOnDelta sets a callback invoked for each incremental text fragment.
func WithOnDelta(fn func(fragment string)) TurnOption {
	return func(h *turnHooks) { h.onDelta = fn }
}

// WithOnSessionBound sets a callback invoked when the first send allocates
// the conversation's session ID.
func WithOnSessionBound(fn func(id types.SessionID)) TurnOption {
	return func(h *turnHooks) { h.onSessionBound = fn }
}

// Orchestrator drives conversational turns: one user message in, one
// assistant message out, with streaming patches and tool dispatch in
// between.
type Orchestrator struct {
	client   genai.Client
	sessions types.SessionStore
	history  *HistoryBuilder
	registry *Registry
	system   func() string
}

// New creates an Orchestrator. system supplies the system instruction for
// each request, so identity changes take effect without rebuilding.
func New(client genai.Client, sessions types.SessionStore, history *HistoryBuilder, registry *Registry, system func() string) *Orchestrator {
	return &Orchestrator{
		client:   client,
		sessions: sessions,
		history:  history,
		registry: registry,
		system:   system,
	}
}

// SendTurn executes exactly one conversational turn. At most one turn may
// be in flight per conversation; re-entrant calls return ErrTurnInFlight.
// The finalized session is committed to the store on stream completion,
// whether the stream ended cleanly, empty, or mid-fragment.
func (o *Orchestrator) SendTurn(ctx context.Context, conv *Conversation, text string, image *types.Attachment, opts ...TurnOption) (*types.ChatMessage, error) {
	if strings.TrimSpace(text) == "" && image == nil {
		return nil, ErrEmptyTurn
	}
	if !conv.guard.TryAcquire(1) {
		return nil, ErrTurnInFlight
	}
	defer conv.guard.Release(1)

	var hooks turnHooks
	for _, opt := range opts {
		opt(&hooks)
	}

	// First send binds the conversation to a session.
	if conv.ID == "" {
		conv.ID = types.NewSessionID()
		o.sessions.SetActive(conv.ID)
		if hooks.onSessionBound != nil {
			hooks.onSessionBound(conv.ID)
		}
	}

	// Optimistic append, before any network interaction.
	userMsg := types.ChatMessage{
		ID:        types.NewMessageID(),
		Role:      types.RoleUser,
		Text:      text,
		Timestamp: time.Now(),
		Image:     image,
	}
	conv.Messages = append(conv.Messages, userMsg)

	request := o.history.Build(conv.Messages)

	stream, err := o.client.StreamChat(ctx, request, o.system(), o.registry.Declarations())
	if err != nil {
		slog.Error("chat stream failed to open", "session", string(conv.ID), "error", err)
		reply := o.appendMessage(conv, fallbackReply)
		o.commit(conv)
		return reply, err
	}
	defer stream.Close()

	// Placeholder with a stable ID: every patch during this turn targets
	// it by ID, so repeated patches are idempotent.
	placeholder := o.appendMessage(conv, "")

	var full strings.Builder
	var notes []string
	for {
		event, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				// Mid-stream interruption: keep the partial text as
				// the final message rather than discarding progress.
				slog.Warn("chat stream interrupted", "session", string(conv.ID), "error", err)
			}
			break
		}
		if event.Text != "" {
			full.WriteString(event.Text)
			conv.patch(placeholder.ID, full.String())
			if hooks.onDelta != nil {
				hooks.onDelta(event.Text)
			}
		}
		for _, call := range event.FunctionCalls {
			note := o.dispatch(ctx, call)
			if note != "" {
				notes = append(notes, note)
			}
		}
	}

	// Merge tool confirmations into the visible text.
	for _, note := range notes {
		if full.Len() > 0 {
			full.WriteString("\n\n")
		}
		full.WriteString(note)
		if hooks.onDelta != nil {
			hooks.onDelta("\n\n" + note)
		}
	}
	conv.patch(placeholder.ID, full.String())

	o.commit(conv)
	final := conv.find(placeholder.ID)
	return final, nil
}

// dispatch runs one tool call and returns the confirmation note for the
// assistant's visible text. Unknown tools and tool failures surface as
// notes too; the turn itself never fails on a tool error.
func (o *Orchestrator) dispatch(ctx context.Context, call genai.FunctionCall) string {
	tool, ok := o.registry.Get(call.Name)
	if !ok {
		slog.Warn("model requested unknown tool", "tool", call.Name)
		return ""
	}
	note, err := tool.Execute(ctx, call.Args)
	if err != nil {
		slog.Error("tool failed", "tool", call.Name, "error", err)
		return "(" + call.Name + " failed: " + err.Error() + ")"
	}
	return note
}

// appendMessage appends an assistant message and returns a pointer into the
// conversation's sequence.
func (o *Orchestrator) appendMessage(conv *Conversation, text string) *types.ChatMessage {
	msg := types.ChatMessage{
		ID:        types.NewMessageID(),
		Role:      types.RoleModel,
		Text:      text,
		Timestamp: time.Now(),
	}
	conv.Messages = append(conv.Messages, msg)
	return &conv.Messages[len(conv.Messages)-1]
}

// commit atomically replaces the session's message sequence in the store.
// The title is derived from the first user message only on first commit;
// subsequent commits pass an empty title so the store keeps the existing
// one.
func (o *Orchestrator) commit(conv *Conversation) {
	title := ""
	if _, exists := o.sessions.Get(conv.ID); !exists {
		title = DeriveTitleFromMessages(conv.Messages)
	}
	if err := o.sessions.Upsert(conv.ID, conv.Messages, title); err != nil {
		slog.Error("session commit failed", "session", string(conv.ID), "error", err)
	}
}

// DeriveTitleFromMessages derives the session title from the first user
// message in the sequence.
func DeriveTitleFromMessages(messages []types.ChatMessage) string {
	for _, m := range messages {
		if m.Role == types.RoleUser {
			return store.DeriveTitle(m.Text)
		}
	}
	return store.DeriveTitle("")
}

// patch sets the text of the message with the given ID. Patching by ID
// (not appending) makes repeated patches with the same cumulative text
// idempotent.
func (c *Conversation) patch(id types.MessageID, text string) {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			c.Messages[i].Text = text
			return
		}
	}
}

func (c *Conversation) find(id types.MessageID) *types.ChatMessage {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}
