package events

import (
	"context"
	"encoding/json"

	"github.com/devmeet/devmeet/internal/infrastructure/contracts"
	"github.com/devmeet/devmeet/internal/infrastructure/messaging"
)

// RoomPublisher emits room lifecycle events to the broker. Consumers turn
// them into the persistent audit trail; the live session path never
// depends on them.
type RoomPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomPublisher(rabbitmq *messaging.RabbitMQ) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RoomPublisher) PublishRoomCreated(ctx context.Context, roomID string) error {
	return p.publish(ctx, contracts.EventRoomCreated, messaging.RoomEventData{
		RoomID: roomID,
	})
}

func (p *RoomPublisher) PublishMemberJoined(ctx context.Context, roomID, displayName string) error {
	return p.publish(ctx, contracts.EventMemberJoined, messaging.RoomEventData{
		RoomID:      roomID,
		DisplayName: displayName,
	})
}

func (p *RoomPublisher) PublishMemberLeft(ctx context.Context, roomID, displayName string) error {
	return p.publish(ctx, contracts.EventMemberLeft, messaging.RoomEventData{
		RoomID:      roomID,
		DisplayName: displayName,
	})
}

func (p *RoomPublisher) publish(ctx context.Context, routingKey string, payload messaging.RoomEventData) error {
	roomEventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RoomID: payload.RoomID,
		Data:   roomEventJSON,
	})
}

// NoopPublisher satisfies the publisher contracts when no broker is
// configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRoomCreated(context.Context, string) error          { return nil }
func (NoopPublisher) PublishMemberJoined(context.Context, string, string) error { return nil }
func (NoopPublisher) PublishMemberLeft(context.Context, string, string) error   { return nil }
