package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/e-games-api/internal/mailer"
	"github.com/flicky/e-games-api/internal/model"
)

const (
	purchaseQueueName = "orders.purchased"
	dlxExchange       = "orders.purchased.dlx"
	dlqQueueName      = "orders.purchased.dlq"
	idempotencyTTL    = 24 * time.Hour
)

type orderReader interface {
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
}

type userReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// PurchaseWorker sends a confirmation email for each bought order.
type PurchaseWorker struct {
	channel     *amqp.Channel
	orders      orderReader
	users       userReader
	mailer      mailer.Mailer
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewPurchaseWorker(
	ch *amqp.Channel,
	orders orderReader,
	users userReader,
	m mailer.Mailer,
	redisClient *redis.Client,
	log *slog.Logger,
) *PurchaseWorker {
	return &PurchaseWorker{
		channel:     ch,
		orders:      orders,
		users:       users,
		mailer:      m,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares exchanges, queues, and bindings (DLX/DLQ).
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, purchaseQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(purchaseQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": purchaseQueueName,
	}); err != nil {
		return fmt.Errorf("declare purchase queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *PurchaseWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(purchaseQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("purchase worker started", "queue", purchaseQueueName)
	return nil
}

func (w *PurchaseWorker) Stop() { close(w.done) }

func (w *PurchaseWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var purchase model.PurchaseMessage
	if err := json.Unmarshal(msg.Body, &purchase); err != nil {
		w.log.Error("unmarshal purchase message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", purchase.OrderID, "user_id", purchase.UserID)

	idempotencyKey := "order_purchased:" + strconv.FormatInt(purchase.OrderID, 10)
	exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("purchase already handled, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.handlePurchase(ctx, purchase); err != nil {
		log.Error("handle purchase failed", "error", err)
		_ = msg.Nack(false, false) // to DLQ
		return
	}

	if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("purchase confirmation sent")
}

func (w *PurchaseWorker) handlePurchase(ctx context.Context, purchase model.PurchaseMessage) error {
	order, err := w.orders.GetByID(ctx, purchase.OrderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.UserID != purchase.UserID {
		return fmt.Errorf("order %d not found for user %s", purchase.OrderID, purchase.UserID)
	}

	user, err := w.users.GetByID(ctx, purchase.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found: %s", purchase.UserID)
	}

	if err := w.mailer.Send(ctx, confirmationMessage(user, order)); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

func confirmationMessage(user *model.User, order *model.Order) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hello %s, thank you for your purchase.</p>", html.EscapeString(user.UserName))
	fmt.Fprintf(&b, "<p>Order #%d</p><ul>", order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%s x %d: %s</li>", html.EscapeString(item.ProductName), item.Quantity, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "</ul><p>Total: %s</p>", order.TotalPrice().StringFixed(2))

	return mailer.Message{
		To:       user.Email,
		Subject:  fmt.Sprintf("Your E-Games order #%d", order.ID),
		HTMLBody: b.String(),
	}
}
