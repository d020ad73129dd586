package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

const defaultSessionEventsQueue = "session.events"

type amqpSessionEventPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string

	mu     sync.Mutex
	closed bool

	logger *logger.Logger
}

// NewSessionEventPublisher dials RabbitMQ and declares the durable session
// events queue. An empty AMQPURL returns a publisher that only logs events.
func NewSessionEventPublisher(cfg config.Adapter, log *logger.Logger) (SessionEventPublisher, error) {
	if cfg.AMQPURL == "" {
		log.Info().Str("func", "NewSessionEventPublisher").Msg("amqp url is empty, session events are disabled")
		return NewNoopSessionEventPublisher(log), nil
	}

	queue := cfg.SessionEventsQueue
	if queue == "" {
		queue = defaultSessionEventsQueue
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Err(err).Str("func", "NewSessionEventPublisher").Msg("rabbitmq dial failed")
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		log.Err(err).Str("func", "NewSessionEventPublisher").Msg("rabbitmq channel open failed")
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}

	if _, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		log.Err(err).Str("func", "NewSessionEventPublisher").Str("queue", queue).Msg("rabbitmq queue declare failed")
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	log.Info().Str("func", "NewSessionEventPublisher").Str("queue", queue).Msg("session event publisher connected")
	return &amqpSessionEventPublisher{
		conn:    conn,
		channel: ch,
		queue:   queue,
		logger:  log,
	}, nil
}

func (p *amqpSessionEventPublisher) Publish(ctx context.Context, event models.SessionEvent) error {
	log := logger.FromContext(ctx)

	pub, err := buildPublishing(event)
	if err != nil {
		log.Err(err).Str("func", "*amqpSessionEventPublisher.Publish").Msg("marshal event failed")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if err = p.channel.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		log.Err(err).
			Str("func", "*amqpSessionEventPublisher.Publish").
			Str("event", string(event.Type)).
			Str("session_id", event.SessionID.String()).
			Msg("rabbitmq publish failed")
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	return nil
}

// Close closes the channel and the connection. It is safe to call twice.
func (p *amqpSessionEventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	chErr := p.channel.Close()
	if err := p.conn.Close(); err != nil {
		return err
	}
	return chErr
}

// buildPublishing encodes event as a persistent JSON message.
func buildPublishing(event models.SessionEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal session event: %w", err)
	}

	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    occurred,
		Type:         string(event.Type),
		MessageId:    event.SessionID.String() + ":" + string(event.Type),
		Body:         body,
	}, nil
}

type noopSessionEventPublisher struct {
	logger *logger.Logger
}

// NewNoopSessionEventPublisher returns a publisher that logs events at debug
// level and drops them.
func NewNoopSessionEventPublisher(log *logger.Logger) SessionEventPublisher {
	return &noopSessionEventPublisher{logger: log}
}

func (p *noopSessionEventPublisher) Publish(ctx context.Context, event models.SessionEvent) error {
	logger.FromContext(ctx).Debug().
		Str("event", string(event.Type)).
		Str("session_id", event.SessionID.String()).
		Str("user_id", event.UserID.String()).
		Msg("session event dropped")
	return nil
}

func (p *noopSessionEventPublisher) Close() error {
	return nil
}
