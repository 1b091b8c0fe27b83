// Package amqp connects the ledger to RabbitMQ: the worker consumes period job
// triggers and the server publishes account movement events.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/domain/jobs"
	"taxiledger/pkg/logger"
)

const (
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

// Config names the broker resources.
type Config struct {
	URL      string
	Exchange string

	// JobQueue receives period job triggers; its name is also the routing key.
	JobQueue string

	// EventRoutingKey is used for movement events. Event consumers bind their own queues.
	EventRoutingKey string
}

// Client holds one connection and channel. A channel is not safe for concurrent
// publishing, so publishes are serialized.
type Client struct {
	cfg Config

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewClient dials the broker and declares the exchange and job queue.
func NewClient(cfg Config) (*Client, error) {
	c := &Client{cfg: cfg}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()

	if err := c.setup(); err != nil {
		c.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.cfg.Exchange, // name
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
		c.cfg.JobQueue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key equals the queue name on the direct exchange.
	err = c.channel.QueueBind(c.cfg.JobQueue, c.cfg.JobQueue, c.cfg.Exchange, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishJob sends a period job trigger.
func (c *Client) PublishJob(ctx context.Context, job jobs.Job) error {
	body, err := EncodeJob(job)
	if err != nil {
		return err
	}
	if err := c.publish(ctx, c.cfg.JobQueue, body); err != nil {
		return err
	}
	logger.Info(ctx, "published job trigger", "job", job.Name, "queue", c.cfg.JobQueue)
	return nil
}

// PublishMovementEvent sends a movement event.
func (c *Client) PublishMovementEvent(ctx context.Context, event *MovementEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := c.publish(ctx, c.cfg.EventRoutingKey, body); err != nil {
		return err
	}
	logger.Debug(ctx, "published movement event", "type", event.Type, "movement_id", event.MovementID)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return errors.New("amqp channel is closed")
	}

	err := c.channel.PublishWithContext(
		ctx,
		c.cfg.Exchange, // exchange
		routingKey,     // routing key
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
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// JobHandler runs one decoded trigger.
type JobHandler func(ctx context.Context, job jobs.Job) error

// ConsumeJobs delivers job triggers to handler until ctx is done or the
// channel closes. Malformed triggers and domain rejections are dropped; jobs
// failing on infrastructure are requeued, since every entry point is idempotent.
func (c *Client) ConsumeJobs(ctx context.Context, handler JobHandler) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return errors.New("amqp channel is closed")
	}

	// One unacknowledged job at a time keeps period jobs sequential.
	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := channel.Consume(
		c.cfg.JobQueue, // queue
		"",             // consumer
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	logger.Info(ctx, "consuming job triggers", "queue", c.cfg.JobQueue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			handleJob(ctx, delivery.Body, delivery, handler)
		}
	}
}

// acknowledger is the part of amqp091.Delivery the consumer needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleJob(ctx context.Context, body []byte, ack acknowledger, handler JobHandler) {
	job, err := DecodeJob(body)
	if err != nil {
		logger.Error(ctx, "dropping invalid job trigger", "error", err, "body", string(body))
		_ = ack.Nack(false, false)
		return
	}

	if err := handler(ctx, job); err != nil {
		if !retryable(err) {
			logger.Error(ctx, "dropping rejected job trigger", "job", job.Name, "error", err)
			_ = ack.Nack(false, false)
			return
		}
		logger.Error(ctx, "job failed, requeueing", "job", job.Name, "error", err)
		_ = ack.Nack(false, true)
		return
	}

	_ = ack.Ack(false)
	logger.Info(ctx, "job trigger processed", "job", job.Name)
}

// retryable reports whether a redelivery can succeed. Domain rejections fail
// the same way every time; lost optimistic locks and infrastructure errors do not.
func retryable(err error) bool {
	if apperror.IsConcurrentModification(err) {
		return true
	}
	status := apperror.GetHTTPStatus(err)
	return status < http.StatusBadRequest || status >= http.StatusInternalServerError
}

// ConsumeJobsWithRetry keeps consuming across broker restarts, reconnecting
// with exponential backoff after connection errors.
func (c *Client) ConsumeJobsWithRetry(ctx context.Context, handler JobHandler) error {
	for attempt := 0; ; {
		err := c.ConsumeJobs(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		logger.Warn(ctx, "amqp connection lost, reconnecting", "error", err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		c.Close()
		if err := c.connect(); err != nil {
			logger.Warn(ctx, "amqp reconnect failed", "error", err, "attempt", attempt+1)
			attempt++
			continue
		}
		attempt = 0
	}
}

// exponentialBackoff returns 1s, 2s, 4s ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection closed",
		"channel closed",
		"eof",
		"broken pipe",
		"use of closed network connection",
		"channel/connection is not open",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && !errors.Is(err, amqp091.ErrClosed) {
			return err
		}
	}
	return nil
}
