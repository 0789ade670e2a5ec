package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/devmeet/devmeet/internal/domain"
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/metrics"
	"github.com/devmeet/devmeet/internal/infrastructure/profanity"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const roomLookupTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RoomEventPublisher receives membership changes for out-of-band
// consumers (audit trail, analytics). Implementations must not block the
// event loop for long; failures are logged and otherwise ignored.
type RoomEventPublisher interface {
	PublishMemberJoined(ctx context.Context, roomID, displayName string) error
	PublishMemberLeft(ctx context.Context, roomID, displayName string) error
}

// Gateway owns the websocket surface: it upgrades connections, assigns
// them ids, decodes inbound envelopes and routes each event to the
// manager responsible for it. All per-connection teardown funnels through
// Disconnect, which is safe to call more than once.
type Gateway struct {
	registry  *Registry
	rooms     *RoomManager
	documents *DocumentRelay
	chat      *ChatRelay
	timers    *TimerAuthority

	store     domain.RoomStore
	publisher RoomEventPublisher
	logger    logging.Logger
}

type Options struct {
	Store        domain.RoomStore
	Publisher    RoomEventPublisher
	Filter       *profanity.Filter
	Clock        clockwork.Clock
	ResetSeconds int
	Logger       logging.Logger
}

func NewGateway(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	registry := NewRegistry()
	rooms := NewRoomManager(logger)

	return &Gateway{
		registry:  registry,
		rooms:     rooms,
		documents: NewDocumentRelay(rooms, registry, logger),
		chat:      NewChatRelay(rooms, opts.Filter, logger),
		timers:    NewTimerAuthority(rooms, opts.Clock, opts.ResetSeconds, logger),
		store:     opts.Store,
		publisher: opts.Publisher,
		logger:    logger,
	}
}

// Rooms exposes the membership manager, mainly for the HTTP handlers.
func (g *Gateway) Rooms() *RoomManager {
	return g.rooms
}

// ServeWS upgrades the HTTP request and starts the connection's read and
// write pumps. The connection id doubles as the member's identity for the
// rest of its lifetime.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Errorf("ws upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, uuid.NewString())

	metrics.ConnectionsTotal.Inc()
	metrics.ActiveConnections.Inc()

	g.logger.Debug(logging.WebSocket, logging.Dispatch, "connection established", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ID,
	})

	go client.WritePump()
	go client.ReadPump(g)
}

// Dispatch decodes one inbound frame and routes it. Malformed frames and
// unknown event types are dropped; a bad client must not be able to take
// the room down with it.
func (g *Gateway) Dispatch(c *Client, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.logger.Debugf("ws malformed frame (client %s): %v", c.ID, err)
		return
	}

	metrics.EventsTotal.WithLabelValues(env.Type).Inc()

	switch env.Type {
	case EventJoinRoom:
		g.handleJoinRoom(c, env)
	case EventDocumentUpdate:
		g.handleDocumentUpdate(c, env)
	case EventRequestInitialContent:
		g.handleInitialContent(c, env)
	case EventTimerStart:
		g.handleTimerControl(c, env, g.timers.Start)
	case EventTimerPause:
		g.handleTimerControl(c, env, g.timers.Pause)
	case EventTimerReset:
		g.handleTimerControl(c, env, g.timers.Reset)
	case EventTimerAddTime:
		g.handleTimerAddTime(c, env)
	case EventTimerTick:
		// Ticking is owned server-side; client ticks are a legacy frame
		// and carry no authority.
		g.logger.Debug(logging.WebSocket, logging.Timer, "ignoring client tick", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID,
			logging.RoomID:       env.RoomID,
		})
	case EventTimerRequest:
		g.handleTimerRequest(c, env)
	case EventChatSend:
		g.handleChatSend(c, env)
	default:
		g.logger.Debug(logging.WebSocket, logging.Dispatch, "unknown event type", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID,
			logging.EventType:    env.Type,
		})
	}
}

// Disconnect tears down a connection exactly once: the room binding is
// removed, the remaining members are notified and the write pump is told
// to drain and close.
func (g *Gateway) Disconnect(c *Client) {
	c.closeOnce.Do(func() {
		if m, ok := g.registry.Unbind(c.ID); ok {
			g.rooms.Leave(m.RoomID, m.ConnectionID, m.DisplayName)
			g.publishMemberLeft(m.RoomID, m.DisplayName)
		}

		c.closeMessages()
		metrics.ActiveConnections.Dec()

		g.logger.Debug(logging.WebSocket, logging.Dispatch, "connection closed", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID,
		})
	})
}

func (g *Gateway) handleJoinRoom(c *Client, env inboundEnvelope) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		c.trySend(NewJoinFailed(env.RoomID, "invalid join payload"))
		return
	}
	if env.RoomID == "" || payload.DisplayName == "" {
		c.trySend(NewJoinFailed(env.RoomID, "roomId and displayName are required"))
		return
	}

	if !g.roomExists(env.RoomID) {
		c.trySend(NewJoinFailed(env.RoomID, "room does not exist"))
		return
	}

	if err := g.registry.Bind(c.ID, env.RoomID, payload.DisplayName); err != nil {
		c.trySend(NewJoinFailed(env.RoomID, "already in a room"))
		return
	}

	g.rooms.Join(env.RoomID, c, payload.DisplayName)
	g.publishMemberJoined(env.RoomID, payload.DisplayName)
}

func (g *Gateway) handleDocumentUpdate(c *Client, env inboundEnvelope) {
	m, ok := g.memberOf(c, env.RoomID)
	if !ok {
		return
	}

	var payload DocumentUpdatePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return
	}

	g.documents.Relay(c, m.RoomID, payload.Content)
}

func (g *Gateway) handleInitialContent(c *Client, env inboundEnvelope) {
	if _, ok := g.memberOf(c, env.RoomID); !ok {
		return
	}

	var payload InitialContentPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return
	}
	if payload.TargetConnectionID == "" {
		return
	}

	g.documents.HandOff(payload.TargetConnectionID, payload.Content)
}

func (g *Gateway) handleTimerControl(c *Client, env inboundEnvelope, apply func(roomID string)) {
	m, ok := g.memberOf(c, env.RoomID)
	if !ok {
		return
	}
	apply(m.RoomID)
}

func (g *Gateway) handleTimerAddTime(c *Client, env inboundEnvelope) {
	m, ok := g.memberOf(c, env.RoomID)
	if !ok {
		return
	}

	var payload AddTimePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return
	}
	if payload.Seconds == 0 {
		return
	}

	g.timers.AddTime(m.RoomID, payload.Seconds)
}

func (g *Gateway) handleTimerRequest(c *Client, env inboundEnvelope) {
	m, ok := g.memberOf(c, env.RoomID)
	if !ok {
		return
	}
	g.timers.Sync(m.RoomID, c)
}

func (g *Gateway) handleChatSend(c *Client, env inboundEnvelope) {
	m, ok := g.memberOf(c, env.RoomID)
	if !ok {
		return
	}

	var payload ChatPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return
	}

	sender := payload.Sender
	if sender == "" {
		sender = m.DisplayName
	}

	g.chat.Send(m.RoomID, sender, payload.Text)
}

// memberOf verifies the connection is bound to the room the frame names.
// Frames from connections that never joined, or that name a different
// room than the one they are in, are dropped.
func (g *Gateway) memberOf(c *Client, roomID string) (domain.Member, bool) {
	m, ok := g.registry.Lookup(c.ID)
	if !ok {
		return domain.Member{}, false
	}
	if roomID != "" && roomID != m.RoomID {
		return domain.Member{}, false
	}
	return m, true
}

// roomExists asks the store whether the room was ever created. The check
// fails open: if the store is unreachable the join proceeds, since
// rejecting live interviews over a flaky lookup is the worse failure.
func (g *Gateway) roomExists(roomID string) bool {
	if g.store == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), roomLookupTimeout)
	defer cancel()

	exists, err := g.store.Exists(ctx, roomID)
	if err != nil {
		g.logger.Warn(logging.WebSocket, logging.Membership, "room existence check failed, allowing join", map[logging.ExtraKey]any{
			logging.RoomID: roomID,
		})
		return true
	}
	return exists
}

func (g *Gateway) publishMemberJoined(roomID, displayName string) {
	if g.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), roomLookupTimeout)
	defer cancel()

	if err := g.publisher.PublishMemberJoined(ctx, roomID, displayName); err != nil {
		g.logger.Errorf("publish member joined: %v", err)
	}
}

func (g *Gateway) publishMemberLeft(roomID, displayName string) {
	if g.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), roomLookupTimeout)
	defer cancel()

	if err := g.publisher.PublishMemberLeft(ctx, roomID, displayName); err != nil {
		g.logger.Errorf("publish member left: %v", err)
	}
}
