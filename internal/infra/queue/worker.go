package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ActivationRunner runs one bulk activation end to end. Implemented by the
// activation use case; declared here so the worker stays decoupled from it.
type ActivationRunner interface {
	Run(ctx context.Context, sessionID string, leadIDs []string) error
}

// Worker consumes activation jobs published by the async entry point and
// drives them through the runner.
type Worker struct {
	Channel *amqp.Channel
	Runner  ActivationRunner
}

func NewWorker(ch *amqp.Channel, runner ActivationRunner) *Worker {
	return &Worker{Channel: ch, Runner: runner}
}

func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	log.Printf("[worker] consuming activation jobs from %q", queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var job ActivationJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Printf("[worker] malformed activation job, dropping to DLQ: %v", err)
		// malformed payload, requeueing would loop forever
		d.Nack(false, false)
		return
	}

	log.Printf("[worker] running activation session=%s leads=%d", job.SessionID, len(job.LeadIDs))

	if err := w.Runner.Run(ctx, job.SessionID, job.LeadIDs); err != nil {
		log.Printf("[worker] activation session=%s failed: %v", job.SessionID, err)
		d.Nack(false, false)
		return
	}

	d.Ack(false)
}
