package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/metrics"
)

// EventEndedMessage is published once an event reaches ended, so downstream
// consumers (result finalization, certificates) can react.
type EventEndedMessage struct {
	EventID   string    `json:"eventId"`
	EventCode string    `json:"eventCode"`
	Name      string    `json:"name"`
	EndedAt   time.Time `json:"endedAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaNotifier struct {
	writer  messageWriter
	topic   string
	metrics *metrics.Metrics
}

func NewKafkaNotifier(conf *config.KafkaConfig, m *metrics.Metrics) *KafkaNotifier {
	return newKafkaNotifier(&kafka.Writer{
		Addr:                   kafka.TCP(conf.Brokers...),
		Topic:                  conf.Topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           conf.Timeout,
		AllowAutoTopicCreation: true,
	}, conf.Topic, m)
}

func newKafkaNotifier(w messageWriter, topic string, m *metrics.Metrics) *KafkaNotifier {
	return &KafkaNotifier{
		writer:  w,
		topic:   topic,
		metrics: m,
	}
}

func (n *KafkaNotifier) EventEnded(ctx context.Context, event domain.Event) error {
	msg := EventEndedMessage{
		EventID:   event.ID,
		EventCode: event.Code,
		Name:      event.Name,
	}
	if event.EndedAt != nil {
		msg.EndedAt = *event.EndedAt
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Code),
		Value: data,
	})
	if err != nil {
		n.metrics.IncNotification(n.topic, "error")
		return fmt.Errorf("n.writer.WriteMessages -> %w", err)
	}

	n.metrics.IncNotification(n.topic, "sent")

	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Nop drops notifications. Used when kafka is disabled.
type Nop struct{}

func (Nop) EventEnded(context.Context, domain.Event) error { return nil }

func (Nop) Close() error { return nil }
