package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/flicky/e-games-api/internal/apperror"
	"github.com/flicky/e-games-api/internal/dto"
	"github.com/flicky/e-games-api/internal/model"
	"github.com/flicky/e-games-api/internal/repository"
)

const topPlatformsCount = 3

var (
	validSortBys   = []string{"Rating", "Price"}
	validAgeRanges = []string{"All", "6+", "12+", "18+"}
	validGenres    = []string{"Shooter", "Strategy", "Racing", "Fighting"}
)

var ageRangeRestriction = map[string]int{"6+": 6, "12+": 12, "18+": 18}

type ProductService struct {
	productRepo repository.ProductRepository
	cache       productCache
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, cache: productCache{client: redisClient}}
}

func (s *ProductService) TopPlatforms(ctx context.Context) ([]dto.PlatformPopularityResponse, error) {
	counts, err := s.productRepo.TopPlatforms(ctx, topPlatformsCount)
	if err != nil {
		return nil, fmt.Errorf("top platforms: %w", err)
	}
	resp := make([]dto.PlatformPopularityResponse, 0, len(counts))
	for _, pc := range counts {
		resp = append(resp, dto.PlatformPopularityResponse{PlatformName: pc.Platform, Count: pc.Count})
	}
	return resp, nil
}

func (s *ProductService) Search(ctx context.Context, term string, limit, offset int) ([]dto.SearchGameResponse, error) {
	if limit <= 0 || offset < 0 {
		return nil, ErrInvalidPaging
	}
	names, err := s.productRepo.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	resp := make([]dto.SearchGameResponse, 0, len(names))
	for _, name := range names {
		resp = append(resp, dto.SearchGameResponse{Name: name})
	}
	return resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	if resp, ok := s.cache.get(ctx, id); ok {
		return resp, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := toProductResponse(product)
	s.cache.set(ctx, &resp)
	return &resp, nil
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	product := &model.Product{
		Name:           req.Name,
		Platform:       req.Platform,
		Genre:          req.Genre,
		Rating:         req.Rating,
		AgeRestriction: req.AgeRestriction,
		Logo:           req.Logo,
		Background:     req.Background,
		Price:          req.Price,
		Count:          req.Count,
	}
	if req.DateCreated != nil {
		product.DateCreated = req.DateCreated.UTC()
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Platform != nil {
		product.Platform = *req.Platform
	}
	if req.Genre != nil {
		product.Genre = req.Genre
	}
	if req.Rating != nil {
		product.Rating = *req.Rating
	}
	if req.AgeRestriction != nil {
		product.AgeRestriction = *req.AgeRestriction
	}
	if req.Logo != nil {
		product.Logo = req.Logo
	}
	if req.Background != nil {
		product.Background = req.Background
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		product.Price = *req.Price
	}
	if req.Count != nil {
		product.Count = *req.Count
	}

	ok, err := s.productRepo.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.cache.invalidate(ctx, id)
	if !ok {
		return nil, ErrProductNotFound
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	ok, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.cache.invalidate(ctx, id)
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) (*dto.PagedProductsResponse, error) {
	genres := splitGenres(req.Genres)
	if err := validateListParams(req, genres); err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{
		Genres: genres,
		Desc:   req.SortOrder == "desc",
		Limit:  req.PageSize,
		Offset: (req.Page - 1) * req.PageSize,
	}
	filter.SortBy, _ = repository.SortColumn(req.SortBy)
	if age, ok := ageRangeRestriction[req.AgeRange]; ok {
		filter.AgeRestriction = &age
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	return &dto.PagedProductsResponse{
		TotalItems:  total,
		TotalPages:  (total + req.PageSize - 1) / req.PageSize,
		CurrentPage: req.Page,
		PageSize:    req.PageSize,
		Items:       items,
	}, nil
}

func splitGenres(raw []string) []string {
	var genres []string
	for _, value := range raw {
		for _, g := range strings.Split(value, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres = append(genres, g)
			}
		}
	}
	return genres
}

func validateListParams(req dto.ListProductsRequest, genres []string) error {
	if req.Page < 1 || req.PageSize < 1 || req.PageSize > 100 {
		return apperror.BadRequest("Page must be at least 1 and PageSize must be between 1 and 100.")
	}
	if !slices.Contains(validSortBys, req.SortBy) {
		return apperror.BadRequest("Invalid SortBy parameter. Valid parameters are: " + strings.Join(validSortBys, ", "))
	}
	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return apperror.BadRequest("SortOrder parameter must be 'asc' or 'desc'.")
	}
	if !slices.Contains(validAgeRanges, req.AgeRange) {
		return apperror.BadRequest("Invalid AgeRange parameter. Valid parameters are: " + strings.Join(validAgeRanges, ", "))
	}
	for _, g := range genres {
		if !slices.Contains(validGenres, g) {
			return apperror.BadRequest("Invalid Genres parameter. Valid parameters are: " + strings.Join(validGenres, ", "))
		}
	}
	return nil
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Platform:       p.Platform,
		DateCreated:    p.DateCreated,
		TotalRating:    p.TotalRating,
		Genre:          p.Genre,
		Rating:         p.Rating,
		AgeRestriction: p.AgeRestriction,
		Logo:           p.Logo,
		Background:     p.Background,
		Price:          p.Price,
		Count:          p.Count,
	}
}
