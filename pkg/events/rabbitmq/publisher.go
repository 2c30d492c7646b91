package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/cartline/cartline-backend/pkg/events"
	"github.com/cartline/cartline-backend/pkg/logger"
)

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends envelopes to a durable topic exchange, keyed by event type.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	logg     *logger.Logger
}

// NewPublisher dials the broker and declares the exchange.
func NewPublisher(amqpURL, exchange string, logg *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, logg: logg}, nil
}

func newWithChannel(ch channel, exchange string, logg *logger.Logger) *Publisher {
	return &Publisher{channel: ch, exchange: exchange, logg: logg}
}

func (p *Publisher) Publish(ctx context.Context, env events.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if p.logg != nil {
		p.logg.Debug(p.logg.WithFields(ctx, map[string]any{
			"event_type": env.Type,
			"event_id":   env.EventID,
			"exchange":   p.exchange,
		}), "publishing event")
	}

	err = p.channel.Publish(p.exchange, env.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Timestamp:    env.OccurredAt,
		Type:         env.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", env.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
