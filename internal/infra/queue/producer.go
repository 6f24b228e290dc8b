package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ActivationJob is one bulk-activation request handed off for out-of-band
// processing. It carries ids only; the worker re-reads everything else.
type ActivationJob struct {
	SessionID   string   `json:"session_id"`
	LeadIDs     []string `json:"lead_ids"`
	RequestedBy string   `json:"requested_by,omitempty"`
}

type ActivationProducerInterface interface {
	PublishActivation(ctx context.Context, job ActivationJob) error
}

type RabbitMQProducer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishActivation(ctx context.Context, job ActivationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal activation job: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish activation job: %w", err)
	}

	return nil
}
