// Package receiptsender собирает воркер отправки квитанций о покупках.
package receiptsender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/summraize/summraize-backend/internal/config"
	"github.com/summraize/summraize-backend/internal/lib/smtp"
	"github.com/summraize/summraize-backend/internal/rabbitmq"
	receiptservice "github.com/summraize/summraize-backend/internal/services/receipt"
)

type App struct {
	conn           *amqp.Connection
	ch             *amqp.Channel
	receiptService *receiptservice.ReceiptService
	logger         *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.AmqpURL, cfg.ConnectRetries, cfg.ConnectRetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetReceiptQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	receiptService := receiptservice.NewReceiptService(logger, transport)

	return &App{
		conn:           conn,
		ch:             ch,
		receiptService: receiptService,
		logger:         logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	for _, q := range rabbitmq.GetReceiptQueues() {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, q.QueueName, a.receiptService.SendPurchaseReceipt); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), slog.Any("err", err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("receipt sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
