package worker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/e-games-api/internal/model"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher sends purchase events to the queue consumed by PurchaseWorker.
type AMQPPublisher struct {
	channel publishChannel
}

func NewAMQPPublisher(ch publishChannel) *AMQPPublisher {
	return &AMQPPublisher{channel: ch}
}

func (p *AMQPPublisher) PublishOrderPurchased(ctx context.Context, msg model.PurchaseMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal purchase message: %w", err)
	}
	if err := p.channel.PublishWithContext(ctx, "", purchaseQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}); err != nil {
		return fmt.Errorf("publish purchase message: %w", err)
	}
	return nil
}
