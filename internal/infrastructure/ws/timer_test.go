package ws

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/devmeet/devmeet/internal/domain"
)

func newTimerFixture(t *testing.T, resetSeconds int) (*RoomManager, *clockwork.FakeClock, *TimerAuthority, *Client) {
	t.Helper()

	rm := NewRoomManager(nil)
	fake := clockwork.NewFakeClock()
	ta := NewTimerAuthority(rm, fake, resetSeconds, nil)

	c := newTestClient("conn-a")
	rm.Join("room-1", c, "alice")
	drainEnvelopes(c)

	return rm, fake, ta, c
}

func tickPayload(t *testing.T, env *Envelope) int {
	t.Helper()

	payload, ok := env.Data.(TimerTickPayload)
	if !ok {
		t.Fatalf("expected TimerTickPayload, got %T", env.Data)
	}
	return payload.TimeLeft
}

func TestTimerStartTicksEverySecond(t *testing.T) {
	_, fake, ta, c := newTimerFixture(t, 1800)

	ta.Start("room-1")
	recvEnvelopeOfType(t, c, EventTimerStart)
	fake.BlockUntil(1)

	fake.Advance(time.Second)
	if left := tickPayload(t, recvEnvelopeOfType(t, c, EventTimerTick)); left != 1799 {
		t.Errorf("first tick = %d, want 1799", left)
	}

	fake.Advance(time.Second)
	if left := tickPayload(t, recvEnvelopeOfType(t, c, EventTimerTick)); left != 1798 {
		t.Errorf("second tick = %d, want 1798", left)
	}
}

func TestTimerPauseStopsTicking(t *testing.T) {
	_, fake, ta, c := newTimerFixture(t, 1800)

	ta.Start("room-1")
	fake.BlockUntil(1)
	fake.Advance(time.Second)
	recvEnvelopeOfType(t, c, EventTimerTick)

	ta.Pause("room-1")
	recvEnvelopeOfType(t, c, EventTimerPause)

	fake.Advance(3 * time.Second)
	assertNoEnvelope(t, c)

	snap, ok := ta.Snapshot("room-1")
	if !ok {
		t.Fatal("expected timer snapshot")
	}
	if snap.IsRunning || snap.TimeLeft != 1799 {
		t.Errorf("snapshot = %+v, want {1799 false}", snap)
	}
}

func TestTimerResetRestoresDefault(t *testing.T) {
	_, fake, ta, c := newTimerFixture(t, 1800)

	ta.Start("room-1")
	fake.BlockUntil(1)
	fake.Advance(time.Second)
	recvEnvelopeOfType(t, c, EventTimerTick)

	ta.Reset("room-1")
	recvEnvelopeOfType(t, c, EventTimerReset)

	snap, ok := ta.Snapshot("room-1")
	if !ok {
		t.Fatal("expected timer snapshot")
	}
	if snap != (domain.TimerSnapshot{TimeLeft: 1800, IsRunning: false}) {
		t.Errorf("snapshot = %+v, want {1800 false}", snap)
	}

	fake.Advance(3 * time.Second)
	assertNoEnvelope(t, c)
}

func TestTimerAddTimeAccumulates(t *testing.T) {
	_, _, ta, c := newTimerFixture(t, 0)

	// 0 falls back to the half hour default.
	ta.Reset("room-1")
	recvEnvelopeOfType(t, c, EventTimerReset)

	ta.AddTime("room-1", 600)
	recvEnvelopeOfType(t, c, EventTimerAddTime)
	ta.AddTime("room-1", 900)
	recvEnvelopeOfType(t, c, EventTimerAddTime)

	snap, _ := ta.Snapshot("room-1")
	if snap.TimeLeft != DefaultTimerSeconds+1500 {
		t.Errorf("timeLeft = %d, want %d", snap.TimeLeft, DefaultTimerSeconds+1500)
	}
}

func TestTimerSyncRepliesToRequesterOnly(t *testing.T) {
	rm, _, ta, alice := newTimerFixture(t, 1800)

	bob := newTestClient("conn-b")
	rm.Join("room-1", bob, "bob")
	drainEnvelopes(alice)
	drainEnvelopes(bob)

	// Before any control event there is no state to report.
	ta.Sync("room-1", bob)
	assertNoEnvelope(t, bob)

	ta.Pause("room-1")
	drainEnvelopes(alice)
	drainEnvelopes(bob)

	ta.Sync("room-1", bob)
	env := recvEnvelope(t, bob)
	if env.Type != EventTimerSync {
		t.Fatalf("expected timer-sync, got %s", env.Type)
	}
	if snap := env.Data.(domain.TimerSnapshot); snap.TimeLeft != 1800 || snap.IsRunning {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	assertNoEnvelope(t, alice)
}

func TestTimerExpiresExactlyOnce(t *testing.T) {
	_, fake, ta, c := newTimerFixture(t, 2)

	ta.Start("room-1")
	recvEnvelopeOfType(t, c, EventTimerStart)
	fake.BlockUntil(1)

	fake.Advance(time.Second)
	if left := tickPayload(t, recvEnvelopeOfType(t, c, EventTimerTick)); left != 1 {
		t.Errorf("tick = %d, want 1", left)
	}

	fake.Advance(time.Second)
	if left := tickPayload(t, recvEnvelopeOfType(t, c, EventTimerTick)); left != 0 {
		t.Errorf("tick = %d, want 0", left)
	}
	recvEnvelopeOfType(t, c, EventTimerExpired)

	snap, _ := ta.Snapshot("room-1")
	if snap.IsRunning || snap.TimeLeft != 0 {
		t.Errorf("snapshot = %+v, want {0 false}", snap)
	}

	// Starting an expired timer with no time left announces the start
	// but never re-fires the expiry.
	ta.Start("room-1")
	recvEnvelopeOfType(t, c, EventTimerStart)
	fake.Advance(3 * time.Second)
	assertNoEnvelope(t, c)
}

func TestTimerAddTimeReArmsExpiry(t *testing.T) {
	_, fake, ta, c := newTimerFixture(t, 1)

	ta.Start("room-1")
	recvEnvelopeOfType(t, c, EventTimerStart)
	fake.BlockUntil(1)

	fake.Advance(time.Second)
	recvEnvelopeOfType(t, c, EventTimerExpired)

	ta.AddTime("room-1", 1)
	recvEnvelopeOfType(t, c, EventTimerAddTime)

	ta.Start("room-1")
	recvEnvelopeOfType(t, c, EventTimerStart)
	fake.BlockUntil(1)

	fake.Advance(time.Second)
	recvEnvelopeOfType(t, c, EventTimerExpired)
}
