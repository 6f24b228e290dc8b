package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventNotifier broadcasts dashboard events (queue depth, activation
// summaries) on a fanout exchange. Strictly best-effort: failures are
// logged and swallowed, a broken broker never fails the primary operation.
type EventNotifier struct {
	Ch *amqp.Channel
}

func NewEventNotifier(ch *amqp.Channel) *EventNotifier {
	return &EventNotifier{Ch: ch}
}

func (n *EventNotifier) Emit(event string, payload any) {
	body, err := json.Marshal(map[string]any{
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		log.Printf("[notifier] marshal %s: %v", event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = n.Ch.PublishWithContext(ctx,
		NotifyExchange,
		"", // fanout ignores the key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("[notifier] emit %s: %v", event, err)
	}
}
