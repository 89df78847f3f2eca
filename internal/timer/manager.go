// internal/timer/manager.go
package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/prakharai/internal/types"
)

// Notifier is called once when a timer expires.
type Notifier func(t *types.AppTimer)

// Manager runs named countdown timers on a shared one-second tick. Each
// tick recomputes remaining = max(0, duration - elapsed(startTime)) for
// every active timer; the recompute is from absolute start time, never a
// decrement, so missed ticks cause no drift.
type Manager struct {
	mu     sync.RWMutex
	timers map[types.TimerID]*types.AppTimer
	order  []types.TimerID
	cron   *cron.Cron
	notify Notifier
	now    func() time.Time
}

// New creates a Manager. notify may be nil.
func New(notify Notifier) *Manager {
	return &Manager{
		timers: make(map[types.TimerID]*types.AppTimer),
		cron:   cron.New(cron.WithSeconds()),
		notify: notify,
		now:    time.Now,
	}
}

// Start begins the one-second tick.
func (m *Manager) Start() error {
	if _, err := m.cron.AddFunc("@every 1s", m.Tick); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop stops the tick. Timers keep their state; a later Tick still
// recomputes correctly from absolute start times.
func (m *Manager) Stop() {
	m.cron.Stop()
}

// Create starts a new independent countdown. Timers are never deduplicated.
func (m *Manager) Create(label string, seconds int) *types.AppTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &types.AppTimer{
		ID:        types.NewTimerID(),
		Label:     label,
		Duration:  seconds,
		Remaining: seconds,
		IsActive:  true,
		StartTime: m.now(),
	}
	m.timers[t.ID] = t
	m.order = append(m.order, t.ID)
	slog.Info("timer created", "id", string(t.ID), "label", label, "seconds", seconds)
	return t
}

// Remove deletes a timer at any point in its lifecycle.
func (m *Manager) Remove(id types.TimerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.timers, id)
	for i, tid := range m.order {
		if tid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Get returns a timer by ID.
func (m *Manager) Get(id types.TimerID) (*types.AppTimer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.timers[id]
	if !ok {
		return nil, false
	}
	c := *t
	return &c, true
}

// List returns all timers in creation order.
func (m *Manager) List() []*types.AppTimer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.AppTimer, 0, len(m.order))
	for _, id := range m.order {
		if t, ok := m.timers[id]; ok {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

// Tick recomputes every active timer. A timer whose remaining reaches zero
// is deactivated exactly once and never reactivates.
func (m *Manager) Tick() {
	m.mu.Lock()
	var expired []*types.AppTimer
	now := m.now()
	for _, t := range m.timers {
		if !t.IsActive {
			continue
		}
		elapsed := int(now.Sub(t.StartTime) / time.Second)
		remaining := t.Duration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		t.Remaining = remaining
		if remaining == 0 {
			t.IsActive = false
			c := *t
			expired = append(expired, &c)
		}
	}
	m.mu.Unlock()

	for _, t := range expired {
		slog.Info("timer expired", "id", string(t.ID), "label", t.Label)
		if m.notify != nil {
			m.notify(t)
		}
	}
}

// SetClock overrides the time source. Used in tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
