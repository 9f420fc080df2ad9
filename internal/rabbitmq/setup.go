// Package rabbitmq настраивает обмен и очереди для событий покупок
// и реализует потребителя с ручным подтверждением сообщений.
package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// ReceiptsExchange — direct-обмен для событий о покупках кредитов.
const ReceiptsExchange = "receipts"

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetReceiptQueues возвращает очереди, привязываемые к обмену receipts.
func GetReceiptQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "receipts.purchase", RoutingKey: "purchase"},
	}
}

// SetupChannel открывает канал, объявляет обмен receipts и привязывает
// к нему переданные очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		ReceiptsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("%s: declare %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, ReceiptsExchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: bind %s: %w", op, q.QueueName, err)
		}
	}

	return ch, nil
}
