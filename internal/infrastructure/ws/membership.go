package ws

import (
	"sync"

	"github.com/devmeet/devmeet/internal/infrastructure/logging"
)

type member struct {
	client      *Client
	displayName string
}

// roomState is the live per-room state: current members in insertion order
// and the countdown timer once one has been initialized. Rooms are created
// implicitly on first touch and stay resident even when empty; only a
// process restart clears them.
type roomState struct {
	id string

	mu      sync.Mutex
	members map[string]member // connectionID → member
	order   []string          // connectionIDs in join order
	timer   *roomTimer        // nil until the first timer control event
}

func (rs *roomState) namesLocked() []string {
	names := make([]string, 0, len(rs.order))
	for _, id := range rs.order {
		names = append(names, rs.members[id].displayName)
	}
	return names
}

func (rs *roomState) clientsLocked(except string) []*Client {
	clients := make([]*Client, 0, len(rs.order))
	for _, id := range rs.order {
		if id == except {
			continue
		}
		clients = append(clients, rs.members[id].client)
	}
	return clients
}

// RoomManager tracks which connections are in which room and broadcasts
// membership changes. Snapshots are re-sent in full on every change rather
// than diffed; rooms are interview-session scale, so the bandwidth cost is
// irrelevant next to the class of ordering bugs it removes.
type RoomManager struct {
	mu     sync.RWMutex
	rooms  map[string]*roomState
	logger logging.Logger
}

func NewRoomManager(logger logging.Logger) *RoomManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RoomManager{
		rooms:  make(map[string]*roomState),
		logger: logger,
	}
}

// room returns the state for roomID, creating it if missing.
func (rm *RoomManager) room(roomID string) *roomState {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rs, ok := rm.rooms[roomID]
	if !ok {
		rs = &roomState{
			id:      roomID,
			members: make(map[string]member),
		}
		rm.rooms[roomID] = rs
	}
	return rs
}

func (rm *RoomManager) lookup(roomID string) (*roomState, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rs, ok := rm.rooms[roomID]
	return rs, ok
}

// client resolves a single member's connection within a room.
func (rm *RoomManager) client(roomID, connectionID string) (*Client, bool) {
	rs, ok := rm.lookup(roomID)
	if !ok {
		return nil, false
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	m, ok := rs.members[connectionID]
	if !ok {
		return nil, false
	}
	return m.client, true
}

// Join adds a connection to a room, then notifies the room: every existing
// member gets a point-to-point arrival notice carrying the newcomer's
// connection id (the document relay keys its catch-up handoff off it), and
// every member including the newcomer gets a full membership snapshot.
func (rm *RoomManager) Join(roomID string, cl *Client, displayName string) {
	rs := rm.room(roomID)

	rs.mu.Lock()
	existing := rs.clientsLocked(cl.ID)
	rs.members[cl.ID] = member{client: cl, displayName: displayName}
	rs.order = append(rs.order, cl.ID)
	names := rs.namesLocked()
	all := rs.clientsLocked("")
	rs.mu.Unlock()

	joined := NewMemberJoined(roomID, cl.ID)
	for _, c := range existing {
		c.trySend(joined)
	}

	snapshot := NewMembershipSnapshot(roomID, names)
	for _, c := range all {
		c.trySend(snapshot)
	}

	rm.logger.Info(logging.WebSocket, logging.Membership, "member joined", map[logging.ExtraKey]any{
		logging.RoomID:       roomID,
		logging.ConnectionID: cl.ID,
		logging.DisplayName:  displayName,
	})
}

// Leave removes a connection from a room and tells the remaining members
// who left, followed by a refreshed snapshot. Leaving a room the connection
// is not in is a silent no-op.
func (rm *RoomManager) Leave(roomID, connectionID, displayName string) {
	rs, ok := rm.lookup(roomID)
	if !ok {
		return
	}

	rs.mu.Lock()
	if _, ok := rs.members[connectionID]; !ok {
		rs.mu.Unlock()
		return
	}
	delete(rs.members, connectionID)
	for i, id := range rs.order {
		if id == connectionID {
			rs.order = append(rs.order[:i], rs.order[i+1:]...)
			break
		}
	}
	names := rs.namesLocked()
	remaining := rs.clientsLocked("")
	rs.mu.Unlock()

	left := NewMemberLeft(roomID, displayName)
	snapshot := NewMembershipSnapshot(roomID, names)
	for _, c := range remaining {
		c.trySend(left)
		c.trySend(snapshot)
	}

	rm.logger.Info(logging.WebSocket, logging.Membership, "member left", map[logging.ExtraKey]any{
		logging.RoomID:       roomID,
		logging.ConnectionID: connectionID,
		logging.DisplayName:  displayName,
	})
}

// Snapshot returns the current display names for a room in join order.
func (rm *RoomManager) Snapshot(roomID string) []string {
	rs, ok := rm.lookup(roomID)
	if !ok {
		return nil
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.namesLocked()
}

// broadcast fans an envelope out to every member of a room, skipping the
// connection named by except (empty string skips nobody). Broadcasting to
// an unknown or empty room is a no-op.
func (rm *RoomManager) broadcast(roomID string, env *Envelope, except string) {
	rs, ok := rm.lookup(roomID)
	if !ok {
		return
	}

	rs.mu.Lock()
	targets := rs.clientsLocked(except)
	rs.mu.Unlock()

	for _, c := range targets {
		c.trySend(env)
	}
}
