package persistence

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/config"
)

// RabbitMQ wraps a broker connection and the mail publishing channel.
type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Queue   string
}

// NewRabbitMQ dials the broker and declares the durable mail queue. When no
// URL is configured the portal runs without email delivery; in-app
// notifications still work.
func NewRabbitMQ(cfg config.RabbitMQConfig, logger *zap.Logger) (*RabbitMQ, error) {
	if cfg.URL == "" {
		logger.Warn("RABBITMQ_URL not provided; email notifications disabled")
		return &RabbitMQ{Queue: cfg.MailQueue}, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(cfg.MailQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq", zap.String("queue", cfg.MailQueue))
	return &RabbitMQ{Conn: conn, Channel: ch, Queue: cfg.MailQueue}, nil
}

// Close releases the channel and connection.
func (r *RabbitMQ) Close() {
	if r == nil {
		return
	}
	if r.Channel != nil {
		_ = r.Channel.Close()
	}
	if r.Conn != nil {
		_ = r.Conn.Close()
	}
}
