package notify

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/restylabs/resty/core/logger"
)

const exchangeName = "resty.events"

// AMQPNotifier publishes change events to a RabbitMQ topic exchange with
// routing keys of the form "<resource>.<operation>".
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPNotifier connects to the broker and declares the events exchange.
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = channel.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPNotifier{conn: conn, channel: channel}, nil
}

// Notify publishes the event. Delivery is best effort; a failed publish is
// logged and otherwise ignored so that storage operations never fail on a
// broker outage.
func (n *AMQPNotifier) Notify(resource string, operation Operation, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := n.channel.PublishWithContext(ctx, exchangeName, resource+"."+string(operation), false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now().UTC(),
			Body:        payload,
		})
	if err != nil {
		logger.Default().WithError(err).Warnf("cannot publish %s event for %s", operation, resource)
	}
}

// Close shuts down the broker connection.
func (n *AMQPNotifier) Close() error {
	return n.conn.Close()
}
