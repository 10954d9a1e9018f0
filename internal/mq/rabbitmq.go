package mq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

func InitQueues(mqConn *amqp.Connection) error {
	ch, err := NewChannel(mqConn)
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := SetupImmediateQueue(ch, BookingNotifyQueue); err != nil {
		return err
	}
	return SetupRetryQueue(ch, BookingNotifyRetryQueue, BookingNotifyRetryExchange,
		BookingNotifyQueue, BookingNotifyRetryRoutingKey)
}

func NewMQConn(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func NewChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func SetupImmediateQueue(ch *amqp.Channel, immediateQueueName string) error {
	_, err := ch.QueueDeclare(immediateQueueName, true, false, false, false, nil)
	return err
}

// SetupRetryQueue declares a delay queue that dead-letters expired messages
// back into the target queue. The delay itself comes from each message's
// Expiration header so the backoff can grow per attempt.
func SetupRetryQueue(ch *amqp.Channel, delayQueueName, retryExchangeName, targetQueueName, retryRoutingKey string) error {
	delayArgs := amqp.Table{
		"x-dead-letter-exchange":    retryExchangeName,
		"x-dead-letter-routing-key": retryRoutingKey,
	}

	if _, err := ch.QueueDeclare(
		delayQueueName, true, false, false, false, delayArgs); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(retryExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(targetQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.QueueBind(targetQueueName, retryRoutingKey, retryExchangeName, false, nil)
}
