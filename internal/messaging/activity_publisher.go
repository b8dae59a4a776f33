package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/models"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultActivityQueue is the queue used when none is configured.
const DefaultActivityQueue = "auth_activity_events"

var _ interfaces.ActivityPublisher = (*RabbitActivityPublisher)(nil)

// RabbitActivityPublisher publishes activity events as persistent JSON messages
// on the default exchange, routed by queue name.
type RabbitActivityPublisher struct {
	conn      *amqp091.Connection
	queueName string
	logger    *zap.Logger

	mu sync.Mutex
	ch *amqp091.Channel
}

// NewRabbitActivityPublisher declares the durable queue up front so a broken
// broker configuration fails at startup rather than on the first login.
func NewRabbitActivityPublisher(conn *amqp091.Connection, queueName string, logger *zap.Logger) (*RabbitActivityPublisher, error) {
	if conn == nil {
		return nil, errors.New("RabbitMQ connection is nil")
	}
	if queueName == "" {
		queueName = DefaultActivityQueue
	}
	p := &RabbitActivityPublisher{
		conn:      conn,
		queueName: queueName,
		logger:    logger.Named("ActivityPublisher").With(zap.String("queue", queueName)),
	}

	p.mu.Lock()
	ch, err := p.channelLocked()
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare queue '%s': %w", queueName, err)
	}

	p.logger.Info("ActivityPublisher initialized")
	return p, nil
}

// channelLocked returns the shared channel, reopening it after a channel-level error.
// p.mu must be held.
func (p *RabbitActivityPublisher) channelLocked() (*amqp091.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// PublishActivity sends one event. The caller decides whether a failure matters.
func (p *RabbitActivityPublisher) PublishActivity(ctx context.Context, event models.ActivityEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal activity event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channelLocked()
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err = ch.PublishWithContext(pubCtx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.ID.String(),
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish activity event", zap.String("type", string(event.Type)), zap.Error(err))
		return fmt.Errorf("failed to publish activity event: %w", err)
	}
	p.logger.Debug("Activity event published", zap.String("type", string(event.Type)), zap.String("eventID", event.ID.String()))
	return nil
}

// Close releases the publishing channel. The connection is owned by the caller.
func (p *RabbitActivityPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		return nil
	}
	return p.ch.Close()
}

// NoopActivityPublisher drops events. Used when no broker is configured.
type NoopActivityPublisher struct {
	logger *zap.Logger
}

var _ interfaces.ActivityPublisher = (*NoopActivityPublisher)(nil)

func NewNoopActivityPublisher(logger *zap.Logger) *NoopActivityPublisher {
	return &NoopActivityPublisher{logger: logger.Named("NoopActivityPublisher")}
}

func (p *NoopActivityPublisher) PublishActivity(_ context.Context, event models.ActivityEvent) error {
	p.logger.Debug("Activity event dropped", zap.String("type", string(event.Type)))
	return nil
}
