package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	EventTypeCatalogSynced  EventType = "catalog.synced"
	EventTypeOrderSubmitted EventType = "order.submitted"
	EventTypeSessionAborted EventType = "session.aborted"
)

// TopicSessionEvents: topic по умолчанию для событий сессии.
const TopicSessionEvents = "smartmeal.session.events"

// SessionEvent представляет событие сессии оформления заказа.
type SessionEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewSessionEvent создает новое событие сессии
func NewSessionEvent(eventType EventType, orderID string, metadata map[string]interface{}) *SessionEvent {
	return &SessionEvent{
		EventType: eventType,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}
