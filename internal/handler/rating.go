package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/e-games-api/internal/apperror"
	"github.com/flicky/e-games-api/internal/dto"
	"github.com/flicky/e-games-api/internal/middleware"
)

type ratingService interface {
	Upsert(ctx context.Context, gameName string, userID uuid.UUID, rating int) (*dto.RatingResponse, error)
	Remove(ctx context.Context, gameName string, userID uuid.UUID) (bool, error)
}

type RatingHandler struct {
	ratingService ratingService
}

func NewRatingHandler(ratingService ratingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func (h *RatingHandler) Upsert(c *gin.Context) {
	var req dto.EditRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	resp, err := h.ratingService.Upsert(c.Request.Context(), req.GameName, middleware.GetUserID(c), req.NewRating)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RatingHandler) Remove(c *gin.Context) {
	gameName := c.Query("gameName")
	if gameName == "" {
		respondError(c, apperror.Validation("The gameName field is required."))
		return
	}

	removed, err := h.ratingService.Remove(c.Request.Context(), gameName, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		respondError(c, apperror.NotFound(fmt.Sprintf("No rating for game '%s'.", gameName)))
		return
	}

	c.Status(http.StatusNoContent)
}
