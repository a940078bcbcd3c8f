package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flicky/e-games-api/internal/dto"
	"github.com/flicky/e-games-api/internal/model"
	"github.com/flicky/e-games-api/internal/repository"
)

// OrderEventPublisher announces bought orders to asynchronous consumers.
type OrderEventPublisher interface {
	PublishOrderPurchased(ctx context.Context, msg model.PurchaseMessage) error
}

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   OrderEventPublisher
	log         *slog.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, publisher OrderEventPublisher, log *slog.Logger) *OrderService {
	return &OrderService{orderRepo: orderRepo, productRepo: productRepo, publisher: publisher, log: log}
}

// AddItem appends a new item to the user's pending order. Repeated calls for the
// same product produce separate items.
func (s *OrderService) AddItem(ctx context.Context, userID uuid.UUID, req dto.CreateOrderItemRequest) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "OrderService.AddItem", trace.WithAttributes(
		attribute.Int64("product.id", req.ProductID),
		attribute.Int("order.amount", req.Amount),
	))
	defer span.End()

	if req.Amount < 1 {
		return nil, ErrInvalidAmount
	}
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	orderID, err := s.orderRepo.AddItemToPending(ctx, userID, product.ID, req.Amount)
	if errors.Is(err, repository.ErrProductMissing) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("add order item: %w", err)
	}
	span.SetAttributes(attribute.Int64("order.id", orderID))

	return s.GetByID(ctx, orderID, userID)
}

func (s *OrderService) GetByID(ctx context.Context, orderID int64, userID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return resp, nil
}

// UpdateItemAmount changes the quantity of the first item for the product.
// Only free items may change.
func (s *OrderService) UpdateItemAmount(ctx context.Context, userID uuid.UUID, req dto.UpdateOrderItemRequest) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateItemAmount", trace.WithAttributes(
		attribute.Int64("order.id", req.OrderID),
		attribute.Int64("product.id", req.ProductID),
	))
	defer span.End()

	if req.NewAmount < 1 {
		return nil, ErrInvalidAmount
	}
	order, err := s.orderRepo.GetByIDForUser(ctx, req.OrderID, userID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	var item *model.OrderItem
	for i := range order.Items {
		if order.Items[i].ProductID == req.ProductID && (item == nil || order.Items[i].ID < item.ID) {
			item = &order.Items[i]
		}
	}
	if item == nil {
		return nil, ErrProductNotInOrder
	}
	if !item.IsFree() {
		return nil, ErrItemNotFree
	}

	ok, err := s.orderRepo.UpdateItemQuantity(ctx, item.ID, req.NewAmount)
	if err != nil {
		return nil, fmt.Errorf("update order item: %w", err)
	}
	if !ok {
		return nil, ErrProductNotInOrder
	}
	item.Quantity = req.NewAmount

	resp := toOrderResponse(order)
	return &resp, nil
}

// DeleteItems removes the listed items from the user's orders.
func (s *OrderService) DeleteItems(ctx context.Context, userID uuid.UUID, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return ErrNoItemsDeleted
	}
	n, err := s.orderRepo.DeleteItems(ctx, userID, itemIDs)
	if err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if n == 0 {
		return ErrNoItemsDeleted
	}
	return nil
}

// BuyPending moves every pending order of the user to Delivered and publishes
// one event per order. Publish failures are logged only.
func (s *OrderService) BuyPending(ctx context.Context, userID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "OrderService.BuyPending")
	defer span.End()

	ids, err := s.orderRepo.MarkPendingDelivered(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("buy pending orders: %w", err)
	}
	if len(ids) == 0 {
		return ErrNoPendingOrders
	}
	span.SetAttributes(attribute.Int("orders.bought", len(ids)))

	if s.publisher == nil {
		return nil
	}
	for _, id := range ids {
		msg := model.PurchaseMessage{OrderID: id, UserID: userID}
		if err := s.publisher.PublishOrderPurchased(ctx, msg); err != nil {
			s.log.ErrorContext(ctx, "publish order purchased", "order_id", id, "user_id", userID, "error", err)
		}
	}
	return nil
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Amount:      item.Quantity,
			Price:       item.Price,
		})
	}
	return dto.OrderResponse{
		OrderID:      order.ID,
		CreationDate: order.CreationDate,
		Status:       order.Status,
		Amount:       order.Amount(),
		TotalPrice:   order.TotalPrice(),
		Items:        items,
	}
}
