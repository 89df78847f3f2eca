package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/prakharai/internal/types"
)

// SetTimer creates a countdown timer on behalf of the model.
type SetTimer struct {
	timers types.TimerCreator
}

// NewSetTimer creates the set_timer tool backed by the given timer manager.
func NewSetTimer(timers types.TimerCreator) *SetTimer {
	return &SetTimer{timers: timers}
}

func (s *SetTimer) Name() string { return "set_timer" }
func (s *SetTimer) Description() string {
	return "Start a named countdown timer for the user"
}
func (s *SetTimer) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"seconds": {"type": "number", "description": "Countdown duration in seconds"},
			"label": {"type": "string", "description": "Short name for the timer"}
		},
		"required": ["seconds", "label"]
	}`)
}

func (s *SetTimer) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Seconds float64 `json:"seconds"`
		Label   string  `json:"label"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("parse args: %w", err)
	}
	if params.Seconds <= 0 {
		return "", fmt.Errorf("seconds must be positive")
	}
	if params.Label == "" {
		return "", fmt.Errorf("label is required")
	}

	t := s.timers.Create(params.Label, int(params.Seconds))
	return fmt.Sprintf("Timer %q set for %d seconds.", t.Label, t.Duration), nil
}
