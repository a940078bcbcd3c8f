package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flicky/e-games-api/internal/dto"
	"github.com/flicky/e-games-api/internal/model"
	"github.com/flicky/e-games-api/internal/repository"
)

type RatingService struct {
	productRepo repository.ProductRepository
	ratingRepo  repository.RatingRepository
	cache       productCache
}

func NewRatingService(productRepo repository.ProductRepository, ratingRepo repository.RatingRepository, redisClient *redis.Client) *RatingService {
	return &RatingService{productRepo: productRepo, ratingRepo: ratingRepo, cache: productCache{client: redisClient}}
}

// Upsert sets the user's rating for the named game and returns the new aggregate.
func (s *RatingService) Upsert(ctx context.Context, gameName string, userID uuid.UUID, rating int) (*dto.RatingResponse, error) {
	ctx, span := tracer.Start(ctx, "RatingService.Upsert", trace.WithAttributes(
		attribute.String("game.name", gameName),
		attribute.Int("rating.value", rating),
	))
	defer span.End()

	if rating < model.MinRating || rating > model.MaxRating {
		return nil, ErrInvalidRating
	}

	product, err := s.productRepo.GetByName(ctx, gameName)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	if product == nil {
		return nil, ErrGameNotFound
	}

	total, err := s.ratingRepo.Upsert(ctx, product.ID, userID, rating)
	if errors.Is(err, repository.ErrProductMissing) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	s.cache.invalidate(ctx, product.ID)

	return &dto.RatingResponse{GameName: product.Name, NewRating: rating, TotalRating: total}, nil
}

// Remove deletes the user's rating. It reports false when the game or the rating does not exist.
func (s *RatingService) Remove(ctx context.Context, gameName string, userID uuid.UUID) (bool, error) {
	ctx, span := tracer.Start(ctx, "RatingService.Remove", trace.WithAttributes(
		attribute.String("game.name", gameName),
	))
	defer span.End()

	product, err := s.productRepo.GetByName(ctx, gameName)
	if err != nil {
		return false, fmt.Errorf("get game: %w", err)
	}
	if product == nil {
		return false, nil
	}

	removed, err := s.ratingRepo.Delete(ctx, product.ID, userID)
	if errors.Is(err, repository.ErrProductMissing) {
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("delete rating: %w", err)
	}
	if removed {
		s.cache.invalidate(ctx, product.ID)
	}
	return removed, nil
}
