package rooms

import "time"

// createRoomRequest carries the optional client-chosen room id. When the
// id is omitted the server generates one.
type createRoomRequest struct {
	RoomID string `json:"roomId,omitempty"`
}

type createRoomResponse struct {
	RoomID    string    `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
}

type roomExistsResponse struct {
	RoomID string `json:"roomId"`
	Exists bool   `json:"exists"`
}
