package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/config"
	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/observability"
)

// The notifier drains the mail queue and delivers email over SMTP. It runs
// as a separate process so a slow or unreachable mail server never blocks
// the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.RabbitMQ.URL == "" {
		logger.Fatal("RABBITMQ_URL is required for the notifier")
	}

	client, err := mail.NewClient(cfg.SMTP.Host,
		mail.WithPort(cfg.SMTP.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTP.Username),
		mail.WithPassword(cfg.SMTP.Password),
	)
	if err != nil {
		logger.Fatal("failed to create mail client", zap.Error(err))
	}
	defer client.Close()

	dialCtx, cancelDial := context.WithTimeout(context.Background(), cfg.SMTP.DialTimeout())
	defer cancelDial()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Fatal("failed to reach smtp server", zap.Error(err))
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	queue, err := ch.QueueDeclare(cfg.RabbitMQ.MailQueue, true, false, false, false, nil)
	if err != nil {
		logger.Fatal("failed to declare queue", zap.Error(err))
	}

	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("failed to start consumer", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consume(ctx, deliveries, client, cfg.SMTP.From, logger)

	logger.Info("notifier running", zap.String("queue", queue.Name))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

func consume(ctx context.Context, deliveries <-chan amqp.Delivery, client *mail.Client, from string, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			handleDelivery(delivery, client, from, logger)
		}
	}
}

// handleDelivery sends one queued email. Malformed jobs are dropped;
// transport failures requeue so delivery survives SMTP blips.
func handleDelivery(delivery amqp.Delivery, client *mail.Client, from string, logger *zap.Logger) {
	var job domain.MailJob
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		logger.Error("failed to decode mail job", zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}

	msg, err := buildMessage(job, from)
	if err != nil {
		logger.Error("failed to build email",
			zap.String("type", job.Type),
			zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}

	if err := client.DialAndSend(msg); err != nil {
		logger.Error("failed to send email", zap.String("to", job.To), zap.Error(err))
		_ = delivery.Nack(false, true)
		return
	}

	logger.Info("email sent", zap.String("type", job.Type), zap.String("to", job.To))
	_ = delivery.Ack(false)
}

func buildMessage(job domain.MailJob, from string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(job.To); err != nil {
		return nil, err
	}

	name := stringField(job.Data, "name")
	referenceNo := stringField(job.Data, "reference_no")

	switch job.Type {
	case domain.MailJobSubmitted:
		msg.Subject(fmt.Sprintf("Application %s received", referenceNo))
		msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
			"Dear %s,\n\nYour application %s for %s has been received and is pending review.\n\nGram Panchayat Portal\n",
			name, referenceNo, stringField(job.Data, "service_name")))
	case domain.MailJobStatusChanged:
		status := stringField(job.Data, "new_status")
		body := fmt.Sprintf("Dear %s,\n\nYour application %s is now %s.\n", name, referenceNo, status)
		if remarks := stringField(job.Data, "remarks"); remarks != "" {
			body += fmt.Sprintf("\nRemarks: %s\n", remarks)
		}
		body += "\nGram Panchayat Portal\n"
		msg.Subject(fmt.Sprintf("Application %s %s", referenceNo, status))
		msg.SetBodyString(mail.TypeTextPlain, body)
	default:
		return nil, fmt.Errorf("unsupported mail job type %q", job.Type)
	}
	return msg, nil
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if val, ok := data[key].(string); ok {
		return val
	}
	return ""
}
