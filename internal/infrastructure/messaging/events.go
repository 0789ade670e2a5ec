package messaging

const (
	RoomsQueue      = "rooms"
	DeadLetterQueue = "dead_letter_queue"
)

// RoomEventData is the payload carried by every room routing key.
type RoomEventData struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName,omitempty"`
}
