package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/user/prakharai/internal/types"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestCreateStartsActive(t *testing.T) {
	m := New(nil)
	clock := newFakeClock()
	m.SetClock(clock.Now)

	created := m.Create("Workout", 600)
	if created.Label != "Workout" || created.Duration != 600 {
		t.Errorf("unexpected timer: %+v", created)
	}
	if created.Remaining != 600 || !created.IsActive {
		t.Errorf("new timer must start active with full remaining: %+v", created)
	}
	if !created.StartTime.Equal(clock.Now()) {
		t.Errorf("start time %v, want %v", created.StartTime, clock.Now())
	}
}

func TestTickRecomputesFromStartTime(t *testing.T) {
	m := New(nil)
	clock := newFakeClock()
	m.SetClock(clock.Now)

	created := m.Create("Tea", 180)

	clock.Advance(30 * time.Second)
	m.Tick()
	got, _ := m.Get(created.ID)
	if got.Remaining != 150 {
		t.Errorf("after 30s: remaining %d, want 150", got.Remaining)
	}

	// A 5-second jump between ticks must land on the same value a
	// tick-by-tick countdown would: elapsed time, not tick count, drives
	// the state.
	clock.Advance(5 * time.Second)
	m.Tick()
	got, _ = m.Get(created.ID)
	if got.Remaining != 145 {
		t.Errorf("after jump: remaining %d, want 145", got.Remaining)
	}
	if !got.IsActive {
		t.Error("timer deactivated early")
	}
}

func TestExpiryNotifiesOnce(t *testing.T) {
	var mu sync.Mutex
	var notified []*types.AppTimer
	m := New(func(at *types.AppTimer) {
		mu.Lock()
		notified = append(notified, at)
		mu.Unlock()
	})
	clock := newFakeClock()
	m.SetClock(clock.Now)

	created := m.Create("Egg", 10)

	clock.Advance(12 * time.Second)
	m.Tick()
	m.Tick()
	m.Tick()

	mu.Lock()
	defer mu.Unlock()
	if len(notified) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(notified))
	}
	if notified[0].ID != created.ID || notified[0].Label != "Egg" {
		t.Errorf("unexpected notification: %+v", notified[0])
	}

	got, _ := m.Get(created.ID)
	if got.IsActive {
		t.Error("expired timer must stay inactive")
	}
	if got.Remaining != 0 {
		t.Errorf("expired remaining %d, want 0", got.Remaining)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	m := New(nil)
	clock := newFakeClock()
	m.SetClock(clock.Now)

	created := m.Create("Short", 5)
	clock.Advance(1 * time.Hour)
	m.Tick()

	got, _ := m.Get(created.ID)
	if got.Remaining != 0 {
		t.Errorf("remaining %d, want 0", got.Remaining)
	}
}

func TestTimersAreIndependent(t *testing.T) {
	m := New(nil)
	clock := newFakeClock()
	m.SetClock(clock.Now)

	first := m.Create("Focus", 60)
	second := m.Create("Focus", 60) // same label, separate countdown

	clock.Advance(60 * time.Second)
	m.Tick()

	list := m.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 timers, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Error("expected creation order preserved")
	}
	for _, timer := range list {
		if timer.IsActive {
			t.Errorf("timer %s still active", timer.ID)
		}
	}
}

func TestRemoveAtAnyStage(t *testing.T) {
	m := New(nil)
	clock := newFakeClock()
	m.SetClock(clock.Now)

	running := m.Create("A", 100)
	expired := m.Create("B", 1)
	clock.Advance(2 * time.Second)
	m.Tick()

	m.Remove(running.ID)
	m.Remove(expired.ID)
	m.Remove(types.NewTimerID()) // absent ID is a no-op

	if len(m.List()) != 0 {
		t.Errorf("expected all timers removed, got %d", len(m.List()))
	}
	if _, ok := m.Get(running.ID); ok {
		t.Error("removed timer still retrievable")
	}
}

func TestListCopiesState(t *testing.T) {
	m := New(nil)
	clock := newFakeClock()
	m.SetClock(clock.Now)

	created := m.Create("Copy", 30)
	list := m.List()
	list[0].Remaining = 1

	got, _ := m.Get(created.ID)
	if got.Remaining != 30 {
		t.Error("mutating a listed timer leaked into manager state")
	}
}
