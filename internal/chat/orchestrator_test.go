package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/user/prakharai/internal/store"
	"github.com/user/prakharai/internal/timer"
	"github.com/user/prakharai/internal/types"
	"github.com/user/prakharai/pkg/genai"
)

// scriptedStream replays canned events, then ends with io.EOF or a scripted
// failure.
type scriptedStream struct {
	events []genai.StreamEvent
	final  error
	i      int

	release chan struct{} // when set, Recv blocks until closed
}

func (s *scriptedStream) Recv() (genai.StreamEvent, error) {
	if s.release != nil {
		<-s.release
	}
	if s.i < len(s.events) {
		e := s.events[s.i]
		s.i++
		return e, nil
	}
	if s.final != nil {
		return genai.StreamEvent{}, s.final
	}
	return genai.StreamEvent{}, io.EOF
}

func (s *scriptedStream) Close() error { return nil }

// mockClient implements genai.Client for orchestrator tests.
type mockClient struct {
	mu      sync.Mutex
	stream  *scriptedStream
	openErr error

	calls       int
	lastHistory []genai.Message
	lastSystem  string
	lastTools   []genai.FunctionDecl
}

func (m *mockClient) StreamChat(_ context.Context, history []genai.Message, system string, tools []genai.FunctionDecl) (genai.ChatStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastHistory = history
	m.lastSystem = system
	m.lastTools = tools
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.stream, nil
}

func (m *mockClient) GenerateImage(context.Context, genai.ImageRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockClient) Synthesize(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func newTestOrchestrator(t *testing.T, client genai.Client, reg *Registry) (*Orchestrator, *store.SessionStore) {
	t.Helper()
	sessions := store.NewSessionStore(store.NewSnapshots(t.TempDir()))
	if reg == nil {
		reg = NewRegistry()
	}
	orch := New(client, sessions, NewHistoryBuilder(128000, 4096), reg, func() string { return "test system" })
	return orch, sessions
}

func TestSendTurnHello(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{events: []genai.StreamEvent{
		{Text: "Hi "},
		{Text: "there!"},
	}}}
	orch, sessions := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	reply, err := orch.SendTurn(context.Background(), conv, "Hello", nil)
	if err != nil {
		t.Fatal(err)
	}

	if conv.ID == "" {
		t.Fatal("expected session ID bound on first send")
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected exactly 2 messages after a turn, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Role != types.RoleUser || conv.Messages[0].Text != "Hello" {
		t.Errorf("unexpected user message: %+v", conv.Messages[0])
	}
	if reply.Role != types.RoleModel || reply.Text != "Hi there!" {
		t.Errorf("unexpected reply: %+v", reply)
	}

	sess, ok := sessions.Get(conv.ID)
	if !ok {
		t.Fatal("expected session committed")
	}
	if sess.Title != "Hello" {
		t.Errorf("expected title derived from first user message, got %q", sess.Title)
	}
	if len(sess.Messages) != 2 {
		t.Errorf("expected committed message count 2, got %d", len(sess.Messages))
	}
	if sessions.Active() != conv.ID {
		t.Error("expected new session to become active")
	}
}

func TestSendTurnRejectsEmptyInput(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{}}
	orch, sessions := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := orch.SendTurn(context.Background(), conv, input, nil); !errors.Is(err, ErrEmptyTurn) {
			t.Errorf("input %q: expected ErrEmptyTurn, got %v", input, err)
		}
	}
	if client.calls != 0 {
		t.Error("validation failure must not reach the generation client")
	}
	if len(sessions.List()) != 0 {
		t.Error("validation failure must not create a session")
	}
}

func TestSendTurnImageOnlyGetsDefaultInstruction(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{events: []genai.StreamEvent{{Text: "A sunset."}}}}
	orch, _ := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	image := &types.Attachment{Data: "aGVsbG8=", MIMEType: "image/png"}
	if _, err := orch.SendTurn(context.Background(), conv, "", image); err != nil {
		t.Fatal(err)
	}

	if len(client.lastHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(client.lastHistory))
	}
	entry := client.lastHistory[0]
	var hasImage bool
	var text string
	for _, p := range entry.Parts {
		if p.InlineData != nil {
			hasImage = true
		}
		if p.Text != "" {
			text = p.Text
		}
	}
	if !hasImage {
		t.Error("expected the image inlined in the request")
	}
	if text == "" {
		t.Error("image-only message must carry non-empty instruction text")
	}
}

// timerSink records created timers without a running tick loop.
type timerSink struct {
	mu     sync.Mutex
	timers []*types.AppTimer
}

func (s *timerSink) Create(label string, seconds int) *types.AppTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &types.AppTimer{
		ID:        types.NewTimerID(),
		Label:     label,
		Duration:  seconds,
		Remaining: seconds,
		IsActive:  true,
	}
	s.timers = append(s.timers, t)
	return t
}

type setTimerTool struct {
	timers types.TimerCreator
}

func (s *setTimerTool) Name() string                 { return "set_timer" }
func (s *setTimerTool) Description() string          { return "start a countdown" }
func (s *setTimerTool) Parameters() json.RawMessage { return json.RawMessage(`{}`) }
func (s *setTimerTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var p struct {
		Seconds float64 `json:"seconds"`
		Label   string  `json:"label"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return "", err
	}
	t := s.timers.Create(p.Label, int(p.Seconds))
	return "Timer \"" + t.Label + "\" set for 600 seconds.", nil
}

func TestSendTurnDispatchesTimerToolCall(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{events: []genai.StreamEvent{
		{Text: "On it."},
		{FunctionCalls: []genai.FunctionCall{{
			Name: "set_timer",
			Args: json.RawMessage(`{"seconds": 600, "label": "Workout"}`),
		}}},
	}}}

	sink := &timerSink{}
	reg := NewRegistry()
	reg.Register(&setTimerTool{timers: sink})
	orch, _ := newTestOrchestrator(t, client, reg)

	conv := NewConversation()
	reply, err := orch.SendTurn(context.Background(), conv, "set a 10 minute workout timer", nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(sink.timers) != 1 {
		t.Fatalf("expected 1 timer created, got %d", len(sink.timers))
	}
	created := sink.timers[0]
	if created.Duration != 600 || created.Remaining != 600 || !created.IsActive {
		t.Errorf("unexpected timer state: %+v", created)
	}
	if !strings.Contains(reply.Text, "Workout") || !strings.Contains(reply.Text, "600") {
		t.Errorf("expected confirmation mentioning the timer, got %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "On it.") {
		t.Errorf("tool confirmation must merge with streamed text, got %q", reply.Text)
	}
}

func TestSendTurnToolDeclarationsAdvertised(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{}}
	sink := &timerSink{}
	reg := NewRegistry()
	reg.Register(&setTimerTool{timers: sink})
	orch, _ := newTestOrchestrator(t, client, reg)

	conv := NewConversation()
	if _, err := orch.SendTurn(context.Background(), conv, "hi", nil); err != nil {
		t.Fatal(err)
	}
	if len(client.lastTools) != 1 || client.lastTools[0].Name != "set_timer" {
		t.Errorf("expected set_timer declared, got %+v", client.lastTools)
	}
	if client.lastSystem != "test system" {
		t.Errorf("expected system instruction forwarded, got %q", client.lastSystem)
	}
}

func TestSendTurnRejectsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	client := &mockClient{stream: &scriptedStream{
		events:  []genai.StreamEvent{{Text: "slow"}},
		release: release,
	}}
	orch, _ := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	done := make(chan error, 1)
	go func() {
		_, err := orch.SendTurn(context.Background(), conv, "first", nil)
		done <- err
	}()

	// Wait until the first turn holds the guard (it has opened the stream).
	for {
		client.mu.Lock()
		started := client.calls > 0
		client.mu.Unlock()
		if started {
			break
		}
	}

	if _, err := orch.SendTurn(context.Background(), conv, "second", nil); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("expected ErrTurnInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	// The guard clears after the turn; a new turn proceeds.
	client.mu.Lock()
	client.stream = &scriptedStream{events: []genai.StreamEvent{{Text: "ok"}}}
	client.mu.Unlock()
	if _, err := orch.SendTurn(context.Background(), conv, "third", nil); err != nil {
		t.Fatal(err)
	}
}

func TestSendTurnStreamInterruptionKeepsPartialText(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{
		events: []genai.StreamEvent{{Text: "partial answ"}},
		final:  errors.New("connection reset"),
	}}
	orch, sessions := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	reply, err := orch.SendTurn(context.Background(), conv, "tell me things", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "partial answ" {
		t.Errorf("expected partial text preserved, got %q", reply.Text)
	}

	sess, ok := sessions.Get(conv.ID)
	if !ok {
		t.Fatal("interrupted turn must still commit")
	}
	if len(sess.Messages) != 2 {
		t.Errorf("expected user + partial assistant committed, got %d", len(sess.Messages))
	}
}

func TestSendTurnOpenFailureCommitsFallback(t *testing.T) {
	client := &mockClient{openErr: errors.New("boom")}
	orch, sessions := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	reply, err := orch.SendTurn(context.Background(), conv, "Hello", nil)
	if err == nil {
		t.Fatal("expected error surfaced")
	}
	if reply == nil || reply.Text == "" {
		t.Fatal("expected a fallback assistant message")
	}

	sess, ok := sessions.Get(conv.ID)
	if !ok {
		t.Fatal("expected the user message committed despite the failure")
	}
	if sess.Messages[0].Text != "Hello" {
		t.Errorf("user message lost: %+v", sess.Messages)
	}

	// The guard is clear; a retry works.
	client.mu.Lock()
	client.openErr = nil
	client.stream = &scriptedStream{events: []genai.StreamEvent{{Text: "recovered"}}}
	client.mu.Unlock()
	if _, err := orch.SendTurn(context.Background(), conv, "again", nil); err != nil {
		t.Fatal(err)
	}
}

func TestSendTurnEmptyCompletion(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{}}
	orch, _ := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	reply, err := orch.SendTurn(context.Background(), conv, "hi", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply == nil || reply.Text != "" {
		t.Errorf("zero-fragment stream should finalize an empty assistant message, got %+v", reply)
	}
	if len(conv.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(conv.Messages))
	}
}

func TestTitleSetOnceAcrossTurns(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{events: []genai.StreamEvent{{Text: "one"}}}}
	orch, sessions := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	if _, err := orch.SendTurn(context.Background(), conv, "What is the weather like in Paris today?", nil); err != nil {
		t.Fatal(err)
	}
	sess, _ := sessions.Get(conv.ID)
	want := sess.Title
	if want != "What is the weather like in Pa..." {
		t.Errorf("unexpected derived title %q", want)
	}

	client.mu.Lock()
	client.stream = &scriptedStream{events: []genai.StreamEvent{{Text: "two"}}}
	client.mu.Unlock()
	if _, err := orch.SendTurn(context.Background(), conv, "and tomorrow?", nil); err != nil {
		t.Fatal(err)
	}
	sess, _ = sessions.Get(conv.ID)
	if sess.Title != want {
		t.Errorf("title changed on a later commit: %q -> %q", want, sess.Title)
	}
	if len(sess.Messages) != 4 {
		t.Errorf("expected 4 messages after two turns, got %d", len(sess.Messages))
	}
}

func TestDeleteActiveSessionClearsPointer(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{events: []genai.StreamEvent{{Text: "hello"}}}}
	orch, sessions := newTestOrchestrator(t, client, nil)

	conv := NewConversation()
	if _, err := orch.SendTurn(context.Background(), conv, "Hello", nil); err != nil {
		t.Fatal(err)
	}
	if sessions.Active() != conv.ID {
		t.Fatal("expected session active")
	}

	if err := sessions.Remove(conv.ID); err != nil {
		t.Fatal(err)
	}
	if sessions.Active() != "" {
		t.Error("expected active pointer cleared")
	}
	for _, s := range sessions.List() {
		if s.ID == conv.ID {
			t.Error("deleted session still listed")
		}
	}
}

func TestSendTurnWithRealTimerManager(t *testing.T) {
	client := &mockClient{stream: &scriptedStream{events: []genai.StreamEvent{
		{FunctionCalls: []genai.FunctionCall{{
			Name: "set_timer",
			Args: json.RawMessage(`{"seconds": 90, "label": "Tea"}`),
		}}},
	}}}

	manager := timer.New(nil)
	reg := NewRegistry()
	reg.Register(&setTimerTool{timers: manager})
	orch, _ := newTestOrchestrator(t, client, reg)

	conv := NewConversation()
	if _, err := orch.SendTurn(context.Background(), conv, "tea timer please", nil); err != nil {
		t.Fatal(err)
	}

	timers := manager.List()
	if len(timers) != 1 {
		t.Fatalf("expected 1 timer, got %d", len(timers))
	}
	if timers[0].Label != "Tea" || timers[0].Duration != 90 || !timers[0].IsActive {
		t.Errorf("unexpected timer: %+v", timers[0])
	}
}
