package ws

import (
	"encoding/json"

	"github.com/devmeet/devmeet/internal/domain"
)

// Envelope is the wire format for every event in both directions.
type Envelope struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// inboundEnvelope defers payload decoding until the type is known.
type inboundEnvelope struct {
	Type   string          `json:"type"`
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

// Payload structs
type JoinRoomPayload struct {
	DisplayName string `json:"displayName"`
}

type DocumentUpdatePayload struct {
	Content string `json:"content"`
}

type InitialContentPayload struct {
	TargetConnectionID string `json:"targetConnectionId"`
	Content            string `json:"content"`
}

type AddTimePayload struct {
	Seconds int `json:"seconds"`
}

type TimerTickPayload struct {
	TimeLeft int `json:"timeLeft"`
}

type ChatPayload struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type MemberJoinedPayload struct {
	NewConnectionID string `json:"newConnectionId"`
}

type MemberLeftPayload struct {
	DisplayName string `json:"displayName"`
}

type MembershipSnapshotPayload struct {
	DisplayNames []string `json:"displayNames"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func NewMemberJoined(roomID, newConnectionID string) *Envelope {
	return &Envelope{
		Type:   EventMemberJoined,
		RoomID: roomID,
		Data: MemberJoinedPayload{
			NewConnectionID: newConnectionID,
		},
	}
}

func NewMemberLeft(roomID, displayName string) *Envelope {
	return &Envelope{
		Type:   EventMemberLeft,
		RoomID: roomID,
		Data: MemberLeftPayload{
			DisplayName: displayName,
		},
	}
}

func NewMembershipSnapshot(roomID string, displayNames []string) *Envelope {
	return &Envelope{
		Type:   EventMembershipSnapshot,
		RoomID: roomID,
		Data:   MembershipSnapshotPayload{DisplayNames: displayNames},
	}
}

func NewDocumentUpdate(roomID, content string) *Envelope {
	return &Envelope{
		Type:   EventDocumentUpdate,
		RoomID: roomID,
		Data:   DocumentUpdatePayload{Content: content},
	}
}

func NewDocumentInitial(content string) *Envelope {
	return &Envelope{
		Type: EventDocumentInitial,
		Data: DocumentUpdatePayload{Content: content},
	}
}

func NewTimerStart(roomID string) *Envelope {
	return &Envelope{Type: EventTimerStart, RoomID: roomID}
}

func NewTimerPause(roomID string) *Envelope {
	return &Envelope{Type: EventTimerPause, RoomID: roomID}
}

func NewTimerReset(roomID string) *Envelope {
	return &Envelope{Type: EventTimerReset, RoomID: roomID}
}

func NewTimerAddTime(roomID string, seconds int) *Envelope {
	return &Envelope{
		Type:   EventTimerAddTime,
		RoomID: roomID,
		Data:   AddTimePayload{Seconds: seconds},
	}
}

func NewTimerTick(roomID string, timeLeft int) *Envelope {
	return &Envelope{
		Type:   EventTimerTick,
		RoomID: roomID,
		Data:   TimerTickPayload{TimeLeft: timeLeft},
	}
}

func NewTimerSync(roomID string, snap domain.TimerSnapshot) *Envelope {
	return &Envelope{
		Type:   EventTimerSync,
		RoomID: roomID,
		Data:   snap,
	}
}

func NewTimerExpired(roomID string) *Envelope {
	return &Envelope{Type: EventTimerExpired, RoomID: roomID}
}

func NewChatReceive(roomID, sender, text string) *Envelope {
	return &Envelope{
		Type:   EventChatReceive,
		RoomID: roomID,
		Data: ChatPayload{
			Sender: sender,
			Text:   text,
		},
	}
}

func NewJoinFailed(roomID, reason string) *Envelope {
	return &Envelope{
		Type:   JoinFailed,
		RoomID: roomID,
		Data: ErrorPayload{
			Code:    "JOIN_FAILED",
			Message: reason,
		},
	}
}
