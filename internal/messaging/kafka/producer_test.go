package kafka

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

func TestProducer_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, log.WithField("component", "kafka-producer-test"))

	event := NewSessionEvent(EventTypeCatalogSynced, "order-123", map[string]interface{}{"inserted": 1})
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicSessionEvents {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "order-123" {
			return errors.New("unexpected key " + string(key))
		}
		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		if headers["event_type"] != string(EventTypeCatalogSynced) || headers["content_type"] != "application/json" {
			return errors.New("unexpected headers")
		}
		if !msg.Timestamp.Equal(event.Timestamp) {
			return errors.New("message timestamp must match event timestamp")
		}
		return nil
	})

	if err := producer.Publish(TopicSessionEvents, event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.Publish(TopicSessionEvents, NewSessionEvent(EventTypeSessionAborted, "order-123", nil))
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducerConfig(t *testing.T) {
	config := producerConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, "smartmeal", config.ClientID)
	assert.True(t, config.Producer.Idempotent)
	assert.Equal(t, sarama.WaitForAll, config.Producer.RequiredAcks)
}

func TestProducer_CloseNil(t *testing.T) {
	var producer *Producer
	if err := producer.Close(); err != nil {
		t.Fatalf("close nil producer: %v", err)
	}
}

func TestNewSessionEvent(t *testing.T) {
	event := NewSessionEvent(EventTypeOrderSubmitted, "order-123", map[string]interface{}{"items": 2})

	if event.EventType != EventTypeOrderSubmitted {
		t.Errorf("expected event type %s, got %s", EventTypeOrderSubmitted, event.EventType)
	}
	if event.OrderID != "order-123" {
		t.Errorf("expected order id order-123, got %s", event.OrderID)
	}
	if event.Metadata["items"] != 2 {
		t.Error("metadata not set correctly")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestSessionPublisher(t *testing.T) {
	orderID := uuid.MustParse("6f1c2a8e-4a57-4d7c-9a0e-2f5b8b1d3c11")

	decode := func(t *testing.T, msg *sarama.ProducerMessage) SessionEvent {
		t.Helper()
		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var event SessionEvent
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	}

	tests := []struct {
		name    string
		publish func(p *SessionPublisher) error
		check   func(t *testing.T, event SessionEvent)
	}{
		{
			name: "catalog synced",
			publish: func(p *SessionPublisher) error {
				return p.CatalogSynced(orderID, 3, 2)
			},
			check: func(t *testing.T, event SessionEvent) {
				assert.Equal(t, EventTypeCatalogSynced, event.EventType)
				assert.EqualValues(t, 3, event.Metadata["inserted"])
				assert.EqualValues(t, 2, event.Metadata["updated"])
			},
		},
		{
			name: "order submitted",
			publish: func(p *SessionPublisher) error {
				return p.OrderSubmitted(domain.Order{ID: orderID, Items: []domain.OrderItem{
					{MenuItemID: "5979224", Quantity: decimal.RequireFromString("0.5")},
				}})
			},
			check: func(t *testing.T, event SessionEvent) {
				assert.Equal(t, EventTypeOrderSubmitted, event.EventType)
				items, ok := event.Metadata["items"].([]interface{})
				require.True(t, ok)
				require.Len(t, items, 1)
				item := items[0].(map[string]interface{})
				assert.Equal(t, "5979224", item["menu_item_id"])
				assert.Equal(t, "0.5", item["quantity"])
			},
		},
		{
			name: "session aborted",
			publish: func(p *SessionPublisher) error {
				return p.SessionAborted(orderID, "fetching", domain.NewError(domain.CodeTransport, "connection refused"))
			},
			check: func(t *testing.T, event SessionEvent) {
				assert.Equal(t, EventTypeSessionAborted, event.EventType)
				assert.Equal(t, "fetching", event.Metadata["stage"])
				assert.Equal(t, domain.CodeTransport, event.Metadata["code"])
				assert.Equal(t, "TransportError: connection refused", event.Metadata["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := mocks.NewTestConfig()
			mockProducer := mocks.NewSyncProducer(t, config)

			var sent *sarama.ProducerMessage
			mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
				sent = msg
				return nil
			})

			publisher := NewSessionPublisher(newProducer(mockProducer, nil), "")
			require.NoError(t, tt.publish(publisher))
			require.NoError(t, mockProducer.Close())

			require.NotNil(t, sent)
			assert.Equal(t, TopicSessionEvents, sent.Topic)
			key, err := sent.Key.Encode()
			require.NoError(t, err)
			assert.Equal(t, orderID.String(), string(key))

			event := decode(t, sent)
			assert.Equal(t, orderID.String(), event.OrderID)
			tt.check(t, event)
		})
	}
}

func TestSessionPublisher_Errors(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewSessionPublisher(newProducer(mockProducer, nil), "custom.topic")
	assert.Error(t, publisher.CatalogSynced(uuid.New(), 0, 0))
	require.NoError(t, mockProducer.Close())

	var uninitialized *SessionPublisher
	assert.Error(t, uninitialized.SessionAborted(uuid.New(), "init", nil))
}
