package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WorkflowRunPayload is published after every workflow run so downstream
// consumers (dashboards, alerting) can react without polling the log table.
type WorkflowRunPayload struct {
	WorkflowID    string    `json:"workflow_id"`
	OwnerID       string    `json:"owner_id"`
	Status        string    `json:"status"`
	LeadsDetected int       `json:"leads_detected"`
	LeadsEnrolled int       `json:"leads_enrolled"`
	Error         string    `json:"error,omitempty"`
	ExecutedAt    time.Time `json:"executed_at"`
}

type RabbitMQProducer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishWorkflowRun(ctx context.Context, payload WorkflowRunPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal workflow run payload: %w", err)
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
		return fmt.Errorf("publish workflow run: %w", err)
	}
	return nil
}
