package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrMemberNotFound    = errors.New("member not found")
	ErrAlreadyInRoom     = errors.New("already in room")
)

// Room is the durable record backing the join-time existence check. Live
// session state (members, timer, document) never touches the store.
type Room struct {
	ID        string    `bson:"room_id" json:"roomId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Member is a live connection bound to a room. DisplayName is free text and
// not unique; ConnectionID is the identity.
type Member struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
	RoomID       string `json:"roomId"`
}

// TimerSnapshot is the authoritative countdown state held per room.
type TimerSnapshot struct {
	TimeLeft  int  `json:"timeLeft"`
	IsRunning bool `json:"isRunning"`
}

// RoomStore validates that a room was legitimately created. It is consulted
// at join time only and must never block the relay path.
type RoomStore interface {
	// Create registers a room id. Creating an id that already exists is not
	// an error.
	Create(ctx context.Context, roomID string) error
	Exists(ctx context.Context, roomID string) (bool, error)
}
