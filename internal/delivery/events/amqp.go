package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Pesokrava/movie_store/internal/config"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

// Exchange is the topic exchange events are routed through; the routing key is the subject
const Exchange = "movie_store.events"

const (
	queueMessageTTL = 24 * time.Hour
	prefetchCount   = 10
)

// QueueName returns the durable queue a consumer group reads subject from. The empty group
// reads the subject queue the publisher declares.
func QueueName(group, subject string) string {
	if group == "" {
		return subject
	}
	return group + "." + subject
}

func declareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
}

func declareQueue(ch *amqp.Channel, queue, subject string) error {
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{"x-message-ttl": queueMessageTTL.Milliseconds()},
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, subject, Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	return nil
}

// AMQPPublisher publishes events to RabbitMQ as persistent messages
type AMQPPublisher struct {
	conn   *amqp.Connection
	logger *logger.Logger

	// amqp channels are not safe for concurrent publishing
	mu       sync.Mutex
	ch       *amqp.Channel
	declared map[string]bool
}

// NewAMQPPublisher connects to RabbitMQ and declares the events exchange
func NewAMQPPublisher(cfg *config.Config, log *logger.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := declareExchange(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("Connected to RabbitMQ")

	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		logger:   log,
		declared: make(map[string]bool),
	}, nil
}

// Publish routes the message to the subject queue, declaring it on first use
func (p *AMQPPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[subject] {
		if err := declareQueue(p.ch, QueueName("", subject), subject); err != nil {
			return err
		}
		p.declared[subject] = true
	}

	err := p.ch.PublishWithContext(ctx,
		Exchange,
		subject, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         data,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}

	p.logger.Debugf("Published message to RabbitMQ subject %s", subject)
	return nil
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.logger.Info("RabbitMQ publisher connection closed")
	}
}

// AMQPConsumer consumes events for one consumer group from RabbitMQ
type AMQPConsumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	group  string
	logger *logger.Logger
	wg     sync.WaitGroup
}

// NewAMQPConsumer connects to RabbitMQ for the consumer group
func NewAMQPConsumer(cfg *config.Config, group string, log *logger.Logger) (*AMQPConsumer, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	if err := declareExchange(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Infof("Connected to RabbitMQ as consumer group %q", group)

	return &AMQPConsumer{
		conn:   conn,
		ch:     ch,
		group:  group,
		logger: log,
	}, nil
}

// Subscribe consumes the group's queue for subject. A failed message is requeued once,
// then dropped.
func (c *AMQPConsumer) Subscribe(subject string, handler Handler) error {
	queue := QueueName(c.group, subject)
	if err := declareQueue(c.ch, queue, subject); err != nil {
		return err
	}

	deliveries, err := c.ch.Consume(
		queue,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", queue, err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for d := range deliveries {
			if err := handler(d.Body); err != nil {
				c.logger.Errorf(err, "Failed to handle message from queue %s", queue)
				if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
					c.logger.Error("Failed to NACK message", nackErr)
				}
				continue
			}
			if ackErr := d.Ack(false); ackErr != nil {
				c.logger.Error("Failed to ACK message", ackErr)
			}
		}
	}()

	c.logger.Infof("Consuming RabbitMQ queue: %s", queue)
	return nil
}

// Close closes the channel, which ends every delivery loop, then the connection
func (c *AMQPConsumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	c.wg.Wait()
	if c.conn != nil {
		_ = c.conn.Close()
		c.logger.Info("RabbitMQ consumer connection closed")
	}
}
