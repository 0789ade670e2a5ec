package ws

import (
	"sync"
	"time"

	"github.com/devmeet/devmeet/internal/domain"
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/metrics"
	"github.com/jonboulle/clockwork"
)

// DefaultTimerSeconds is the countdown a reset restores: 30 minutes.
const DefaultTimerSeconds = 1800

// roomTimer holds one room's countdown. The authority owns the ticking
// task; clients only ever observe. expired is the one-shot guard for the
// current run, re-armed whenever time is put back on the clock.
type roomTimer struct {
	mu      sync.Mutex
	snap    domain.TimerSnapshot
	expired bool
	stop    chan struct{} // non-nil while a ticking task is live
}

func (t *roomTimer) stopTickingLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// TimerAuthority holds the authoritative {timeLeft, isRunning} snapshot per
// room, applies control events in arrival order, and answers resync
// requests. While a room's timer runs, a single clock-driven task owned by
// the authority decrements the snapshot and broadcasts a tick every second;
// reaching zero flips isRunning off and announces expiry exactly once.
type TimerAuthority struct {
	rooms        *RoomManager
	clock        clockwork.Clock
	resetSeconds int
	logger       logging.Logger
}

func NewTimerAuthority(rooms *RoomManager, clock clockwork.Clock, resetSeconds int, logger logging.Logger) *TimerAuthority {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if resetSeconds <= 0 {
		resetSeconds = DefaultTimerSeconds
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TimerAuthority{
		rooms:        rooms,
		clock:        clock,
		resetSeconds: resetSeconds,
		logger:       logger,
	}
}

// timer returns the room's timer, initializing it on the first control
// event. Once initialized it is never nil again.
func (ta *TimerAuthority) timer(roomID string) *roomTimer {
	rs := ta.rooms.room(roomID)

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.timer == nil {
		rs.timer = &roomTimer{
			snap: domain.TimerSnapshot{TimeLeft: ta.resetSeconds},
		}
	}
	return rs.timer
}

func (ta *TimerAuthority) Start(roomID string) {
	t := ta.timer(roomID)

	t.mu.Lock()
	t.snap.IsRunning = true
	if t.snap.TimeLeft > 0 {
		ta.startTickingLocked(roomID, t)
	}
	t.mu.Unlock()

	ta.rooms.broadcast(roomID, NewTimerStart(roomID), "")
}

func (ta *TimerAuthority) Pause(roomID string) {
	t := ta.timer(roomID)

	t.mu.Lock()
	t.snap.IsRunning = false
	t.stopTickingLocked()
	t.mu.Unlock()

	ta.rooms.broadcast(roomID, NewTimerPause(roomID), "")
}

func (ta *TimerAuthority) Reset(roomID string) {
	t := ta.timer(roomID)

	t.mu.Lock()
	t.snap = domain.TimerSnapshot{TimeLeft: ta.resetSeconds, IsRunning: false}
	t.expired = false
	t.stopTickingLocked()
	t.mu.Unlock()

	ta.rooms.broadcast(roomID, NewTimerReset(roomID), "")
}

func (ta *TimerAuthority) AddTime(roomID string, seconds int) {
	t := ta.timer(roomID)

	t.mu.Lock()
	t.snap.TimeLeft += seconds
	if t.snap.TimeLeft > 0 {
		t.expired = false
	}
	if t.snap.IsRunning && t.snap.TimeLeft > 0 {
		ta.startTickingLocked(roomID, t)
	}
	t.mu.Unlock()

	ta.rooms.broadcast(roomID, NewTimerAddTime(roomID, seconds), "")
}

// Sync answers a resync request, replying to the requester only. Before the
// first control event there is no snapshot and no reply, matching the
// client's expectation of keeping its local default.
func (ta *TimerAuthority) Sync(roomID string, requester *Client) {
	rs, ok := ta.rooms.lookup(roomID)
	if !ok {
		return
	}

	rs.mu.Lock()
	t := rs.timer
	rs.mu.Unlock()
	if t == nil {
		return
	}

	t.mu.Lock()
	snap := t.snap
	t.mu.Unlock()

	requester.trySend(NewTimerSync(roomID, snap))
}

// Snapshot reports the current timer state, if initialized.
func (ta *TimerAuthority) Snapshot(roomID string) (domain.TimerSnapshot, bool) {
	rs, ok := ta.rooms.lookup(roomID)
	if !ok {
		return domain.TimerSnapshot{}, false
	}

	rs.mu.Lock()
	t := rs.timer
	rs.mu.Unlock()
	if t == nil {
		return domain.TimerSnapshot{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap, true
}

// startTickingLocked launches the per-room ticking task. At most one task
// runs per room; callers hold t.mu.
func (ta *TimerAuthority) startTickingLocked(roomID string, t *roomTimer) {
	if t.stop != nil {
		return
	}

	stopCh := make(chan struct{})
	t.stop = stopCh
	go ta.runTicker(roomID, t, stopCh)
}

func (ta *TimerAuthority) runTicker(roomID string, t *roomTimer, stopCh chan struct{}) {
	ticker := ta.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return

		case <-ticker.Chan():
			t.mu.Lock()
			if !t.snap.IsRunning || t.stop != stopCh {
				// Paused or superseded between the tick firing and us
				// winning the lock.
				t.mu.Unlock()
				return
			}

			t.snap.TimeLeft--
			left := t.snap.TimeLeft

			expiredNow := false
			if left <= 0 {
				t.snap.IsRunning = false
				if !t.expired {
					t.expired = true
					expiredNow = true
				}
				t.stopTickingLocked()
			}
			t.mu.Unlock()

			ta.rooms.broadcast(roomID, NewTimerTick(roomID, left), "")

			if expiredNow {
				ta.rooms.broadcast(roomID, NewTimerExpired(roomID), "")
				metrics.TimerExpirationsTotal.Inc()
				ta.logger.Info(logging.WebSocket, logging.Timer, "countdown expired", map[logging.ExtraKey]any{
					logging.RoomID: roomID,
				})
			}

			if left <= 0 {
				return
			}
		}
	}
}
