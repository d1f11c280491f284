package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/curbsidehq/curbside/internal/shared/config"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

const (
	// EventsExchange carries mirrored order events. Routing keys:
	// "order.created" and "order.updated.<orderID>".
	EventsExchange = "orders.events"

	// NotificationsQueue is the durable queue the subscriber mode drains.
	NotificationsQueue = "order_notifications"
)

// Client is a resilient RabbitMQ connector with auto-reconnect and topology
// setup.
type Client struct {
	url    string
	logger *logger.Logger
	logCtx context.Context // survives reconnects after the parent ctx ends

	mu      sync.RWMutex
	conn    *amqp.Connection
	pubChan *amqp.Channel

	closed    chan struct{}
	reconnect chan struct{}
}

// Connect establishes the connection and starts a background watcher that
// reconnects on failures.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)

	client := &Client{
		url:       url,
		logger:    log,
		logCtx:    context.WithoutCancel(ctx),
		closed:    make(chan struct{}),
		reconnect: make(chan struct{}, 1),
	}

	// single initial attempt; further retries happen in the watcher
	if err := client.connectOnce(ctx); err != nil {
		return nil, err
	}

	go client.watch()

	return client, nil
}

// Publish sends a persistent JSON message to the given exchange.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	c.mu.RLock()
	conn := c.conn
	ch := c.pubChan
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(ctx,
		exchange, routingKey, false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
}

// NewConsumerChannel returns a fresh channel with prefetch applied.
func (c *Client) NewConsumerChannel(prefetch int) (*amqp.Channel, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return nil, errors.New("rabbitmq: connection is not ready")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			ch.Close()
			return nil, err
		}
	}
	return ch, nil
}

// Close gracefully stops the watcher and closes AMQP resources.
func (c *Client) Close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	c.mu.Lock()
	if c.pubChan != nil {
		_ = c.pubChan.Close()
		c.pubChan = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
}

// --- internals ---

func (c *Client) connectOnce(ctx context.Context) error {
	start := time.Now().UTC()

	conn, err := amqp.DialConfig(c.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	if c.pubChan != nil {
		_ = c.pubChan.Close()
	}
	c.pubChan = ch
	c.mu.Unlock()

	// either the connection or the publish channel closing triggers reconnect
	go func() {
		connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
		chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-c.closed:
			return
		case <-connClosed:
		case <-chClosed:
		}

		select {
		case c.reconnect <- struct{}{}:
		default:
		}
	}()

	c.logger.Info(ctx, "rabbitmq_connected",
		"Connected to RabbitMQ; exchange: "+EventsExchange,
		map[string]any{"duration_ms": time.Since(start).Milliseconds()})

	return nil
}

// watch attempts reconnects with exponential backoff until Close.
func (c *Client) watch() {
	backoff := time.Second
	for {
		select {
		case <-c.closed:
			return
		case <-c.reconnect:
			for {
				select {
				case <-c.closed:
					return
				default:
				}

				ctx, cancel := context.WithTimeout(c.logCtx, 30*time.Second)
				err := c.connectOnce(ctx)
				cancel()

				if err == nil {
					backoff = time.Second
					c.logger.Info(c.logCtx, "rabbitmq_reconnected", "Reconnected to RabbitMQ and re-ensured topology", nil)
					break
				}

				c.logger.Error(c.logCtx, "retry_attempted", "RabbitMQ reconnect failed", err)

				time.Sleep(backoff)
				if backoff < 30*time.Second {
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
				}
			}
		}
	}
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(NotificationsQueue, true, false, false, false, nil); err != nil {
		return err
	}
	// "order.#" catches order.created and order.updated.<id>
	return ch.QueueBind(NotificationsQueue, "order.#", EventsExchange, false, nil)
}
