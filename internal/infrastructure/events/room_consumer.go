package events

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"

	"github.com/devmeet/devmeet/internal/domain"
	"github.com/devmeet/devmeet/internal/infrastructure/contracts"
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/messaging"
)

type roomConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.RoomAuditRepository
	logger   logging.Logger
}

func NewRoomConsumer(rabbitmq *messaging.RabbitMQ, audit domain.RoomAuditRepository, logger logging.Logger) *roomConsumer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &roomConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
		logger:   logger,
	}
}

// Listen drains the rooms queue and persists one audit log per delivery.
// Unknown routing keys are acked and skipped so a newer publisher cannot
// wedge an older consumer.
func (c *roomConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.RoomsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			c.logger.Errorf("failed to unmarshal amqp message: %v", err)
			return err
		}

		var payload messaging.RoomEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			c.logger.Errorf("failed to unmarshal room event data: %v", err)
			return err
		}

		var auditLog *domain.RoomAuditLog
		switch msg.RoutingKey {
		case contracts.EventRoomCreated:
			auditLog = domain.NewRoomCreatedLog(payload.RoomID)
		case contracts.EventMemberJoined:
			auditLog = domain.NewMemberJoinedLog(payload.RoomID, payload.DisplayName)
		case contracts.EventMemberLeft:
			auditLog = domain.NewMemberLeftLog(payload.RoomID, payload.DisplayName)
		default:
			c.logger.Warn(logging.RabbitMQ, logging.Dispatch, "skipping unknown routing key", map[logging.ExtraKey]any{
				logging.EventType: msg.RoutingKey,
			})
			return nil
		}

		if err := c.audit.Log(ctx, auditLog); err != nil {
			c.logger.Errorf("failed to persist audit log: %v", err)
			return err
		}

		return nil
	})
}
