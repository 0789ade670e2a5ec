package rooms

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devmeet/devmeet/internal/domain"
	"github.com/devmeet/devmeet/internal/infrastructure/json"
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/validate"
)

// roomCreatedPublisher is the slice of the event publisher this handler
// needs; the no-op implementation satisfies it when no broker runs.
type roomCreatedPublisher interface {
	PublishRoomCreated(ctx context.Context, roomID string) error
}

var roomIDValidator = validate.Field("roomId", validate.Compose(
	validate.Required(),
	validate.MaxLength(64),
	validate.NoSpaces(),
))

type Handler struct {
	store     domain.RoomStore
	publisher roomCreatedPublisher
	logger    logging.Logger
}

func NewHandler(store domain.RoomStore, publisher roomCreatedPublisher, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	roomID := req.RoomID
	if roomID == "" {
		roomID = uuid.NewString()
	}

	if err := roomIDValidator(roomID); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.store.Create(ctx, roomID); err != nil {
		h.logger.Errorf("failed to create room %s: %v", roomID, err)
		json.WriteInternalError(w, err)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishRoomCreated(ctx, roomID); err != nil {
			h.logger.Errorf("error publishing room created: %v", err)
		}
	}

	json.Write(w, http.StatusCreated, createRoomResponse{
		RoomID:    roomID,
		CreatedAt: time.Now().UTC(),
	})
}

func (h *Handler) RoomExistsHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if err := roomIDValidator(roomID); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	exists, err := h.store.Exists(r.Context(), roomID)
	if err != nil {
		h.logger.Errorf("failed to check room %s: %v", roomID, err)
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, roomExistsResponse{
		RoomID: roomID,
		Exists: exists,
	})
}
