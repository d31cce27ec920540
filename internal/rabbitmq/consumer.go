package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrDeliveriesClosed is returned by StartReading when the broker closes the
// delivery channel.
var ErrDeliveriesClosed = errors.New("deliveries channel closed")

// Handler processes one message body. A non-nil error rejects the message
// without requeue.
type Handler func(ctx context.Context, body []byte) error

// * StartReading consumes the queue with manual acks until ctx is done.
func (r *RabbitMQClient) StartReading(ctx context.Context, prefetch int, handle Handler) error {
	const op = "rabbitmq.StartReading"

	if err := r.channel.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msgs, err := r.channel.ConsumeWithContext(ctx, r.queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%s: %w", op, ErrDeliveriesClosed)
			}

			if err := process(ctx, d, handle); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
}

// process acks on success and nacks without requeue on handler failure.
// Only acknowledgement errors are returned.
func process(ctx context.Context, d amqp.Delivery, handle Handler) error {
	if err := handle(ctx, d.Body); err != nil {
		return d.Nack(false, false)
	}

	return d.Ack(false)
}
