// Package amqp carries expense lifecycle events between the API process
// and the spreadsheet export worker over RabbitMQ.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Message kinds on the wire.
const (
	KindSync   = "expense.sync"
	KindDelete = "expense.delete"
)

// envelope wraps every published message with its kind so one queue can
// carry both sync and delete events.
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishExpenseSync publishes an expense sync event.
func (c *Client) PublishExpenseSync(ctx context.Context, id, version int64) error {
	payload, err := NewExpenseSyncMessage(id, version).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal sync message: %w", err)
	}
	if err := c.publish(ctx, KindSync, payload); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published expense sync message",
		"id", id,
		"version", version,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishExpenseDelete publishes an expense delete event.
func (c *Client) PublishExpenseDelete(ctx context.Context, id int64) error {
	payload, err := NewExpenseDeleteMessage(id).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal delete message: %w", err)
	}
	if err := c.publish(ctx, KindDelete, payload); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published expense delete message",
		"id", id,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, kind string, payload []byte) error {
	body, err := json.Marshal(envelope{Kind: kind, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s message: %w", kind, err)
	}
	return nil
}

// ConsumeMessages delivers queue messages to the matching handler until
// the context is cancelled. Malformed messages are rejected without
// requeue; handler failures requeue the delivery.
func (c *Client) ConsumeMessages(
	ctx context.Context,
	onSync func(context.Context, *ExpenseSyncMessage) error,
	onDelete func(context.Context, *ExpenseDeleteMessage) error,
) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming expense events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			if err := c.dispatch(ctx, delivery.Body, onSync, onDelete); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message", "error", err)
				delivery.Nack(false, true) // requeue for retry
				continue
			}
			delivery.Ack(false)
		}
	}
}

func (c *Client) dispatch(
	ctx context.Context,
	body []byte,
	onSync func(context.Context, *ExpenseSyncMessage) error,
	onDelete func(context.Context, *ExpenseDeleteMessage) error,
) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Malformed body: log and drop, a requeue can never succeed.
		slog.ErrorContext(ctx, "Dropping malformed message", "error", err)
		return nil
	}

	switch env.Kind {
	case KindSync:
		msg, err := ExpenseSyncMessageFromJSON(env.Payload)
		if err != nil {
			slog.ErrorContext(ctx, "Dropping malformed sync payload", "error", err)
			return nil
		}
		return onSync(ctx, msg)
	case KindDelete:
		msg, err := ExpenseDeleteMessageFromJSON(env.Payload)
		if err != nil {
			slog.ErrorContext(ctx, "Dropping malformed delete payload", "error", err)
			return nil
		}
		return onDelete(ctx, msg)
	default:
		slog.WarnContext(ctx, "Dropping message of unknown kind", "kind", env.Kind)
		return nil
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
