package rabbitmq

import (
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

const (
	// ExchangeName is the topic exchange all domain events go through.
	ExchangeName = "kelas.events"
	// CheckoutQueue receives every checkout.* event.
	CheckoutQueue = "checkout_events"
	checkoutBinding = "checkout.#"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, declares the events exchange and binds the
// checkout queue to it.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected, exchange %s and queue %s declared.", ExchangeName, CheckoutQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ExchangeName, err)
	}

	_, err = ch.QueueDeclare(
		CheckoutQueue, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", CheckoutQueue, err)
	}

	if err := ch.QueueBind(CheckoutQueue, checkoutBinding, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", CheckoutQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a JSON event to the events exchange under routingKey.
func (c *Client) Publish(routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		ExchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		newPublishing(body),
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	log.Printf(" [x] Sent %s event: %s", routingKey, body)
	return nil
}

func newPublishing(body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Make message persistent
		Timestamp:    time.Now(),
	}
}

// ConsumeCheckoutEvents starts a goroutine that hands every message on the
// checkout queue to messageHandler. Messages are acked on success and
// rejected without requeue when the handler fails.
func (c *Client) ConsumeCheckoutEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		CheckoutQueue, // queue
		"",            // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for checkout events")

	go func() {
		for msg := range msgs {
			settle(msg, messageHandler(msg))
		}
	}()

	return nil
}

// acknowledger is the part of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(msg amqp.Delivery, handlerErr error) {
	settleWith(msg, msg.DeliveryTag, handlerErr)
}

func settleWith(ack acknowledger, tag uint64, handlerErr error) {
	if handlerErr != nil {
		log.Printf("Error processing message %d: %v", tag, handlerErr)
		// A malformed event will not get better on redelivery
		if err := ack.Nack(false, false); err != nil {
			log.Printf("Error nacking message %d: %v", tag, err)
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		log.Printf("Error acking message %d: %v", tag, err)
	}
}
