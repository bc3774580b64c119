package messaging

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const closeRequestConsumerTag = "rounds-close-consumer"

// CloseRequestConsumer читает очередь запросов на закрытие раунда.
type CloseRequestConsumer struct {
	conn        *amqp.Connection
	processor   *CloseRequestProcessor
	queueName   string
	stopChannel chan struct{}
	stopOnce    sync.Once
	logger      *zap.Logger
}

func NewCloseRequestConsumer(conn *amqp.Connection, processor *CloseRequestProcessor, queueName string, logger *zap.Logger) *CloseRequestConsumer {
	return &CloseRequestConsumer{
		conn:        conn,
		processor:   processor,
		queueName:   queueName,
		stopChannel: make(chan struct{}),
		logger:      logger.Named("CloseRequestConsumer"),
	}
}

// StartConsuming блокируется до Stop, отмены ctx или закрытия канала доставки.
// Сообщения обрабатываются по одному; ack/nack зависит от результата обработки.
func (c *CloseRequestConsumer) StartConsuming(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("consumer: failed to open channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(c.queueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer: failed to declare queue '%s': %w", c.queueName, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("consumer: failed to set QoS: %w", err)
	}
	msgs, err := ch.Consume(q.Name, closeRequestConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer: failed to register consumer: %w", err)
	}
	c.logger.Info("Waiting for round close requests", zap.String("queue", q.Name))

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				c.logger.Warn("Delivery channel closed")
				return nil
			}
			c.handle(ctx, d)
		case <-c.stopChannel:
			c.logger.Info("Stop signal received")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *CloseRequestConsumer) handle(ctx context.Context, d amqp.Delivery) {
	disposition := c.processor.Process(ctx, d.Body)

	var err error
	switch disposition {
	case Ack:
		err = d.Ack(false)
	case Requeue:
		err = d.Nack(false, true)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		c.logger.Error("Failed to settle delivery",
			zap.Uint64("deliveryTag", d.DeliveryTag), zap.Stringer("disposition", disposition), zap.Error(err))
	}
}

// Stop останавливает цикл чтения. Повторный вызов безопасен.
func (c *CloseRequestConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChannel) })
}
