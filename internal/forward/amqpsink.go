package forward

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/ferrygo/wcfhttp/internal/metrics"
)

// AMQPSink publishes payloads to a topic exchange instead of a callback
// URL, for deployments that already run a broker. Routing key is
// "message.<type>" so consumers can bind per message type.
type AMQPSink struct {
	conn     *amqp091.Connection
	exchange string
	log      *slog.Logger
}

func NewAMQPSink(url, exchange string, logger *slog.Logger) (*AMQPSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPSink{conn: conn, exchange: exchange, log: logger}, nil
}

func (s *AMQPSink) Deliver(ctx context.Context, p Payload) error {
	ch, err := s.conn.Channel()
	if err != nil {
		metrics.DeliveryFailures.WithLabelValues("transport").Inc()
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	key := fmt.Sprintf("message.%d", p.Type)
	start := time.Now()
	err = ch.PublishWithContext(
		ctx, s.exchange, key, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		metrics.DeliveryFailures.WithLabelValues("transport").Inc()
		return fmt.Errorf("publish %s: %w", key, err)
	}
	metrics.DeliveryDuration.Observe(time.Since(start).Seconds())
	s.log.Debug("published", slog.String("key", key), slog.Uint64("id", p.Id))
	return nil
}

func (s *AMQPSink) Close() error {
	return s.conn.Close()
}
