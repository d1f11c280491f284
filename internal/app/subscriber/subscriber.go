// Package subscriber is the out-of-process notification worker: it drains
// the broker queue of mirrored order events and prints a human-readable line
// per event. Useful as the kitchen's terminal feed and as a smoke check that
// the broker mirror is flowing.
package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/curbsidehq/curbside/internal/app/notifier"
	"github.com/curbsidehq/curbside/internal/shared/logger"
	"github.com/curbsidehq/curbside/internal/shared/rabbitmq"
)

const consumerPrefetch = 10

// Service consumes the notifications queue until its context ends.
type Service struct {
	client *rabbitmq.Client
	logger *logger.Logger
}

func New(client *rabbitmq.Client, log *logger.Logger) *Service {
	return &Service{client: client, logger: log}
}

// Run consumes deliveries forever, surviving channel and connection drops by
// opening a fresh channel with backoff.
func (s *Service) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := s.consumeOnce(ctx)
		if err == nil {
			// clean channel close on shutdown
			continue
		}

		s.logger.Error(ctx, "consume_interrupted", "Notification consumer interrupted", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}
	}
}

func (s *Service) consumeOnce(ctx context.Context) error {
	ch, err := s.client.NewConsumerChannel(consumerPrefetch)
	if err != nil {
		return err
	}
	defer ch.Close()

	deliveries, err := ch.Consume(rabbitmq.NotificationsQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "subscriber_started", "Consuming "+rabbitmq.NotificationsQueue, nil)

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr == nil {
				return nil
			}
			return amqpErr
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			s.handle(ctx, d)
		}
	}
}

func (s *Service) handle(ctx context.Context, d amqp.Delivery) {
	line, err := renderHuman(d.Body)
	if err != nil {
		s.logger.Error(ctx, "event_malformed", "Dropping malformed order event", err)
		// reject without requeue; a malformed event never gets better
		_ = d.Nack(false, false)
		return
	}

	fmt.Println(line)
	_ = d.Ack(false)
}

// renderHuman turns a mirrored event into one line for the terminal feed.
func renderHuman(body []byte) (string, error) {
	var ev notifier.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", err
	}
	if ev.Order.ID == "" {
		return "", fmt.Errorf("event missing order id")
	}

	o := ev.Order
	switch ev.Type {
	case notifier.EventOrderCreated:
		return fmt.Sprintf("New order %s: %s, $%.2f, pickup at %s",
			o.ID, o.CustomerName, o.Total, o.LocationID), nil
	case notifier.EventOrderUpdated:
		if o.Status == "cooking" {
			return fmt.Sprintf("Order %s: cooking, %d min remaining", o.ID, o.RemainingMinutes), nil
		}
		return fmt.Sprintf("Order %s: %s", o.ID, o.Status), nil
	default:
		return fmt.Sprintf("Order %s: %s event", o.ID, ev.Type), nil
	}
}
