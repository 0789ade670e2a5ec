package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

type stubRoomStore struct {
	mu    sync.Mutex
	rooms map[string]bool
	err   error
}

func newStubRoomStore(roomIDs ...string) *stubRoomStore {
	s := &stubRoomStore{rooms: make(map[string]bool)}
	for _, id := range roomIDs {
		s.rooms[id] = true
	}
	return s
}

func (s *stubRoomStore) Create(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[roomID] = true
	return nil
}

func (s *stubRoomStore) Exists(_ context.Context, roomID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return s.rooms[roomID], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	joined []string
	left   []string
}

func (p *recordingPublisher) PublishMemberJoined(_ context.Context, roomID, displayName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joined = append(p.joined, roomID+"/"+displayName)
	return nil
}

func (p *recordingPublisher) PublishMemberLeft(_ context.Context, roomID, displayName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.left = append(p.left, roomID+"/"+displayName)
	return nil
}

func joinFrame(roomID, displayName string) []byte {
	return []byte(fmt.Sprintf(`{"type":"join-room","roomId":%q,"data":{"displayName":%q}}`, roomID, displayName))
}

func TestDispatchJoinRoom(t *testing.T) {
	pub := &recordingPublisher{}
	g := NewGateway(Options{
		Store:     newStubRoomStore("room-1"),
		Publisher: pub,
	})

	alice := newTestClient("conn-a")
	g.Dispatch(alice, joinFrame("room-1", "alice"))

	env := recvEnvelopeOfType(t, alice, EventMembershipSnapshot)
	names := env.Data.(MembershipSnapshotPayload).DisplayNames
	if len(names) != 1 || names[0] != "alice" {
		t.Errorf("unexpected snapshot: %v", names)
	}

	m, ok := g.registry.Lookup("conn-a")
	if !ok || m.RoomID != "room-1" {
		t.Errorf("expected binding to room-1, got %+v", m)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.joined) != 1 || pub.joined[0] != "room-1/alice" {
		t.Errorf("unexpected publishes: %v", pub.joined)
	}
}

func TestDispatchJoinUnknownRoomFails(t *testing.T) {
	g := NewGateway(Options{Store: newStubRoomStore()})

	alice := newTestClient("conn-a")
	g.Dispatch(alice, joinFrame("no-such-room", "alice"))

	env := recvEnvelope(t, alice)
	if env.Type != JoinFailed {
		t.Fatalf("expected %s, got %s", JoinFailed, env.Type)
	}
	if _, ok := g.registry.Lookup("conn-a"); ok {
		t.Error("failed join must not leave a binding behind")
	}
}

func TestDispatchJoinFailsOpenOnStoreError(t *testing.T) {
	store := newStubRoomStore()
	store.err = context.DeadlineExceeded
	g := NewGateway(Options{Store: store})

	alice := newTestClient("conn-a")
	g.Dispatch(alice, joinFrame("room-1", "alice"))

	recvEnvelopeOfType(t, alice, EventMembershipSnapshot)
}

func TestDispatchSecondJoinRejected(t *testing.T) {
	g := NewGateway(Options{Store: newStubRoomStore("room-1", "room-2")})

	alice := newTestClient("conn-a")
	g.Dispatch(alice, joinFrame("room-1", "alice"))
	recvEnvelopeOfType(t, alice, EventMembershipSnapshot)

	g.Dispatch(alice, joinFrame("room-2", "alice"))
	env := recvEnvelope(t, alice)
	if env.Type != JoinFailed {
		t.Fatalf("expected %s, got %s", JoinFailed, env.Type)
	}
}

func TestDispatchMalformedFrameIsDropped(t *testing.T) {
	g := NewGateway(Options{})

	alice := newTestClient("conn-a")
	g.Dispatch(alice, []byte(`{not json`))
	g.Dispatch(alice, []byte(`{"type":"no-such-event"}`))

	assertNoEnvelope(t, alice)
}

func TestDispatchFromUnjoinedConnectionIsDropped(t *testing.T) {
	g := NewGateway(Options{Store: newStubRoomStore("room-1")})

	alice := newTestClient("conn-a")
	bob := newTestClient("conn-b")
	g.Dispatch(alice, joinFrame("room-1", "alice"))
	recvEnvelopeOfType(t, alice, EventMembershipSnapshot)

	frame, _ := json.Marshal(map[string]any{
		"type":   EventDocumentUpdate,
		"roomId": "room-1",
		"data":   DocumentUpdatePayload{Content: "sneaky"},
	})
	g.Dispatch(bob, frame)

	assertNoEnvelope(t, alice)
	assertNoEnvelope(t, bob)
}

func TestDispatchDocumentUpdateRelays(t *testing.T) {
	g := NewGateway(Options{Store: newStubRoomStore("room-1")})

	alice := newTestClient("conn-a")
	bob := newTestClient("conn-b")
	g.Dispatch(alice, joinFrame("room-1", "alice"))
	g.Dispatch(bob, joinFrame("room-1", "bob"))
	drainEnvelopes(alice)
	drainEnvelopes(bob)

	frame, _ := json.Marshal(map[string]any{
		"type":   EventDocumentUpdate,
		"roomId": "room-1",
		"data":   DocumentUpdatePayload{Content: "v2"},
	})
	g.Dispatch(alice, frame)

	env := recvEnvelopeOfType(t, bob, EventDocumentUpdate)
	if payload := env.Data.(DocumentUpdatePayload); payload.Content != "v2" {
		t.Errorf("unexpected content: %q", payload.Content)
	}
	assertNoEnvelope(t, alice)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	pub := &recordingPublisher{}
	g := NewGateway(Options{Store: newStubRoomStore("room-1"), Publisher: pub})

	alice := newTestClient("conn-a")
	bob := newTestClient("conn-b")
	g.Dispatch(alice, joinFrame("room-1", "alice"))
	g.Dispatch(bob, joinFrame("room-1", "bob"))
	drainEnvelopes(alice)
	drainEnvelopes(bob)

	g.Disconnect(bob)
	g.Disconnect(bob)

	recvEnvelopeOfType(t, alice, EventMemberLeft)
	env := recvEnvelopeOfType(t, alice, EventMembershipSnapshot)
	names := env.Data.(MembershipSnapshotPayload).DisplayNames
	if len(names) != 1 || names[0] != "alice" {
		t.Errorf("unexpected snapshot after disconnect: %v", names)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.left) != 1 || pub.left[0] != "room-1/bob" {
		t.Errorf("expected exactly one member-left publish, got %v", pub.left)
	}
}

func TestDispatchClientTickIsIgnored(t *testing.T) {
	g := NewGateway(Options{Store: newStubRoomStore("room-1")})

	alice := newTestClient("conn-a")
	g.Dispatch(alice, joinFrame("room-1", "alice"))
	drainEnvelopes(alice)

	frame, _ := json.Marshal(map[string]any{
		"type":   EventTimerTick,
		"roomId": "room-1",
		"data":   TimerTickPayload{TimeLeft: 42},
	})
	g.Dispatch(alice, frame)

	assertNoEnvelope(t, alice)
	if _, ok := g.timers.Snapshot("room-1"); ok {
		t.Error("a client tick must not initialize the timer")
	}
}
