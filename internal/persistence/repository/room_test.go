package repository

import (
	"github.com/devmeet/devmeet/internal/domain"
)

// Both room store implementations must stay interchangeable.
var (
	_ domain.RoomStore = (*RoomRepository)(nil)
	_ domain.RoomStore = (*InMemoryRoomStore)(nil)
)
