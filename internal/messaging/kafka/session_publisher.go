package kafka

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/workflow"
)

// SessionPublisher публикует события сессии в заданный Kafka topic.
// Ключ сообщения: идентификатор заказа, поэтому события одной сессии попадают в одну партицию.
type SessionPublisher struct {
	producer *Producer
	topic    string
}

// NewSessionPublisher создаёт паблишер событий сессии.
func NewSessionPublisher(producer *Producer, topic string) *SessionPublisher {
	if topic == "" {
		topic = TopicSessionEvents
	}
	return &SessionPublisher{
		producer: producer,
		topic:    topic,
	}
}

// CatalogSynced сообщает о завершённой синхронизации каталога.
func (p *SessionPublisher) CatalogSynced(orderID uuid.UUID, inserted, updated int) error {
	return p.publish(NewSessionEvent(EventTypeCatalogSynced, orderID.String(), map[string]interface{}{
		"inserted": inserted,
		"updated":  updated,
	}))
}

// OrderSubmitted сообщает об успешно принятом заказе.
func (p *SessionPublisher) OrderSubmitted(order domain.Order) error {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"menu_item_id": item.MenuItemID,
			"quantity":     item.Quantity.String(),
		})
	}
	return p.publish(NewSessionEvent(EventTypeOrderSubmitted, order.ID.String(), map[string]interface{}{
		"items": items,
	}))
}

// SessionAborted сообщает об аварийном завершении сессии на этапе stage.
func (p *SessionPublisher) SessionAborted(orderID uuid.UUID, stage string, cause error) error {
	metadata := map[string]interface{}{"stage": stage}
	if cause != nil {
		metadata["error"] = cause.Error()
		metadata["code"] = domain.CodeOf(cause)
	}
	return p.publish(NewSessionEvent(EventTypeSessionAborted, orderID.String(), metadata))
}

func (p *SessionPublisher) publish(event *SessionEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka session publisher is not initialized")
	}
	return p.producer.Publish(p.topic, event)
}

var _ workflow.EventPublisher = (*SessionPublisher)(nil)
