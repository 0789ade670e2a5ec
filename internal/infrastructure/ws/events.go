package ws

// Inbound event types.
const (
	EventJoinRoom              = "join-room"
	EventDocumentUpdate        = "document-update"
	EventRequestInitialContent = "request-initial-content"
	EventTimerStart            = "timer-start"
	EventTimerPause            = "timer-pause"
	EventTimerReset            = "timer-reset"
	EventTimerAddTime          = "timer-add-time"
	EventTimerTick             = "timer-tick"
	EventTimerRequest          = "timer-request"
	EventChatSend              = "chat-send"
)

// Outbound event types.
const (
	EventMembershipSnapshot = "membership-snapshot"
	EventMemberJoined       = "member-joined"
	EventMemberLeft         = "member-left"
	EventDocumentInitial    = "document-initial"
	EventTimerSync          = "timer-sync"
	EventTimerExpired       = "timer-expired"
	EventChatReceive        = "chat-receive"

	JoinFailed = "error.join"
)
