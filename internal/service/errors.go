package service

import (
	"go.opentelemetry.io/otel"

	"github.com/flicky/e-games-api/internal/apperror"
)

var tracer = otel.Tracer("github.com/flicky/e-games-api/internal/service")

var (
	ErrProductNotFound    = apperror.NotFound("Product not found")
	ErrGameNotFound       = apperror.NotFound("Game not found")
	ErrOrderNotFound      = apperror.NotFound("Order not found")
	ErrProductNotInOrder  = apperror.NotFound("Product not found in the order.")
	ErrItemNotFree        = apperror.BadRequest("Can only change the amount for unpaid (free) products.")
	ErrNoItemsDeleted     = apperror.BadRequest("No matching order items found for deletion.")
	ErrNoPendingOrders    = apperror.BadRequest("There are no pending orders to buy.")
	ErrInvalidAmount      = apperror.BadRequest("Amount must be at least 1.")
	ErrInvalidRating      = apperror.BadRequest("Rating must be between 1 and 5.")
	ErrInvalidPaging      = apperror.BadRequest("Invalid parameters: Limit must be greater than zero and Offset cannot be negative.")
	ErrNegativePrice      = apperror.BadRequest("Price cannot be negative.")
	ErrUserNotFound       = apperror.NotFound("User not found")
	ErrWrongPassword      = apperror.BadRequest("Current password is not correct")
	ErrInvalidCredentials = apperror.Unauthorized("Invalid email or password")
)
