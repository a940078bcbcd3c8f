package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/e-games-api/internal/apperror"
	"github.com/flicky/e-games-api/internal/dto"
	"github.com/flicky/e-games-api/internal/middleware"
)

type orderService interface {
	AddItem(ctx context.Context, userID uuid.UUID, req dto.CreateOrderItemRequest) (*dto.OrderResponse, error)
	GetByID(ctx context.Context, orderID int64, userID uuid.UUID) (*dto.OrderResponse, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error)
	UpdateItemAmount(ctx context.Context, userID uuid.UUID, req dto.UpdateOrderItemRequest) (*dto.OrderResponse, error)
	DeleteItems(ctx context.Context, userID uuid.UUID, itemIDs []int64) error
	BuyPending(ctx context.Context, userID uuid.UUID) error
}

type OrderHandler struct {
	orderService orderService
}

func NewOrderHandler(orderService orderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	var req dto.CreateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	resp, err := h.orderService.AddItem(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Get returns one order when orderId is given, otherwise all of the user's orders.
func (h *OrderHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if raw, ok := c.GetQuery("orderId"); ok {
		orderID, err := parseID(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		resp, err := h.orderService.GetByID(c.Request.Context(), orderID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := h.orderService.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) UpdateItemAmount(c *gin.Context) {
	var req dto.UpdateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	resp, err := h.orderService.UpdateItemAmount(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) DeleteItems(c *gin.Context) {
	raw := c.QueryArray("itemIds")
	if len(raw) == 0 {
		respondError(c, apperror.Validation("The itemIds field is required."))
		return
	}

	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r)
		if err != nil {
			respondError(c, err)
			return
		}
		ids = append(ids, id)
	}

	if err := h.orderService.DeleteItems(c.Request.Context(), middleware.GetUserID(c), ids); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) Buy(c *gin.Context) {
	if err := h.orderService.BuyPending(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
