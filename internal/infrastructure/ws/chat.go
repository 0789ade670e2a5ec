package ws

import (
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/profanity"
)

// ChatRelay is a stateless fan-out of chat events to a room, sender
// included. Nothing is stored server-side; ordering is whatever the
// underlying per-connection FIFO gives us.
type ChatRelay struct {
	rooms  *RoomManager
	filter *profanity.Filter
	logger logging.Logger
}

func NewChatRelay(rooms *RoomManager, filter *profanity.Filter, logger logging.Logger) *ChatRelay {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ChatRelay{
		rooms:  rooms,
		filter: filter,
		logger: logger,
	}
}

func (c *ChatRelay) Send(roomID, sender, text string) {
	if c.filter != nil && c.filter.ContainsProfanity(text) {
		// Fire-and-forget transport has no error channel back to the
		// sender; the message just doesn't fan out.
		c.logger.Warn(logging.WebSocket, logging.Chat, "message dropped by profanity filter", map[logging.ExtraKey]any{
			logging.RoomID:      roomID,
			logging.DisplayName: sender,
		})
		return
	}

	c.rooms.broadcast(roomID, NewChatReceive(roomID, sender, text), "")
}
