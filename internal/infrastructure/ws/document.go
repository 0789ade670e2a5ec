package ws

import (
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
)

// DocumentRelay forwards document mutations between room members. The
// server never stores document content: steady-state edits are relayed
// verbatim to everyone but the sender, and late joiners are caught up by an
// existing peer sending its full document point-to-point. Last relayed
// write wins; receivers are expected to suppress their own echo.
type DocumentRelay struct {
	rooms    *RoomManager
	registry *Registry
	logger   logging.Logger
}

func NewDocumentRelay(rooms *RoomManager, registry *Registry, logger logging.Logger) *DocumentRelay {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &DocumentRelay{
		rooms:    rooms,
		registry: registry,
		logger:   logger,
	}
}

// Relay forwards a mutation from sender to every other member of the room.
func (d *DocumentRelay) Relay(sender *Client, roomID, content string) {
	d.rooms.broadcast(roomID, NewDocumentUpdate(roomID, content), sender.ID)
}

// HandOff routes a full-document transfer from an existing member to a
// newly joined one. The target is addressed by connection id; if it has
// already disconnected the transfer is dropped silently — the newcomer
// keeps its local default, an accepted failure mode of peer-sourced
// catch-up.
func (d *DocumentRelay) HandOff(targetConnectionID, content string) {
	binding, ok := d.registry.Lookup(targetConnectionID)
	if !ok {
		d.logger.Debug(logging.WebSocket, logging.Document, "handoff target gone", map[logging.ExtraKey]any{
			logging.ConnectionID: targetConnectionID,
		})
		return
	}

	target, ok := d.rooms.client(binding.RoomID, targetConnectionID)
	if !ok {
		return
	}

	target.trySend(NewDocumentInitial(content))
}
