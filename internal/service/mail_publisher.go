package service

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/spec-kit/panchayat-portal/internal/config"
	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/persistence"
)

// MailPublisher enqueues email jobs for cmd/notifier.
type MailPublisher interface {
	PublishMail(ctx context.Context, job domain.MailJob) error
}

type amqpMailPublisher struct {
	channel *amqp.Channel
	queue   string
	cfg     config.RabbitMQConfig
}

// NewMailPublisher wraps the RabbitMQ channel as a MailPublisher. Returns
// nil when no broker is configured so callers can skip email delivery.
func NewMailPublisher(broker *persistence.RabbitMQ, cfg config.RabbitMQConfig) MailPublisher {
	if broker == nil || broker.Channel == nil {
		return nil
	}
	return &amqpMailPublisher{channel: broker.Channel, queue: broker.Queue, cfg: cfg}
}

func (p *amqpMailPublisher) PublishMail(ctx context.Context, job domain.MailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	publishCtx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout())
	defer cancel()
	return p.channel.PublishWithContext(publishCtx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
