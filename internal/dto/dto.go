package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/e-games-api/internal/model"
)

// --- Auth ---

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	UserName string `json:"userName" binding:"omitempty,max=256"`
	Password string `json:"password" binding:"required,min=8"`
	Age      uint8  `json:"age"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	UserName string    `json:"userName"`
	Role     string    `json:"role"`
}

// --- Games ---

// CreateProductRequest binds from JSON or multipart/form-data. In a form the
// logo and background may be uploaded files and price is a decimal string.
type CreateProductRequest struct {
	Name           string           `json:"name" form:"name" binding:"required,max=100"`
	Platform       model.Platform   `json:"platform" form:"platform" binding:"required,oneof=PC Xbox PlayStation Nintendo Mobile Web"`
	DateCreated    *time.Time       `json:"dateCreated" form:"dateCreated" time_format:"2006-01-02T15:04:05Z07:00"`
	Genre          *string          `json:"genre" form:"genre" binding:"omitempty,max=100"`
	Rating         model.RatingTier `json:"rating" form:"rating" binding:"required,oneof=OneStar TwoStars ThreeStars FourStars FiveStars"`
	AgeRestriction int              `json:"ageRestriction" form:"ageRestriction" binding:"oneof=0 6 12 18"`
	Logo           *string          `json:"logo" form:"logo" binding:"omitempty,url"`
	Background     *string          `json:"background" form:"background" binding:"omitempty,url"`
	Price          decimal.Decimal  `json:"price" form:"-"`
	Count          int              `json:"count" form:"count" binding:"min=0"`
}

// UpdateProductRequest applies only the fields that are present.
type UpdateProductRequest struct {
	Name           *string           `json:"name" form:"name" binding:"omitempty,min=1,max=100"`
	Platform       *model.Platform   `json:"platform" form:"platform" binding:"omitempty,oneof=PC Xbox PlayStation Nintendo Mobile Web"`
	Genre          *string           `json:"genre" form:"genre" binding:"omitempty,max=100"`
	Rating         *model.RatingTier `json:"rating" form:"rating" binding:"omitempty,oneof=OneStar TwoStars ThreeStars FourStars FiveStars"`
	AgeRestriction *int              `json:"ageRestriction" form:"ageRestriction" binding:"omitempty,oneof=0 6 12 18"`
	Logo           *string           `json:"logo" form:"logo" binding:"omitempty,url"`
	Background     *string           `json:"background" form:"background" binding:"omitempty,url"`
	Price          *decimal.Decimal  `json:"price" form:"-"`
	Count          *int              `json:"count" form:"count" binding:"omitempty,min=0"`
}

type ProductResponse struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Platform       model.Platform   `json:"platform"`
	DateCreated    time.Time        `json:"dateCreated"`
	TotalRating    int              `json:"totalRating"`
	Genre          *string          `json:"genre"`
	Rating         model.RatingTier `json:"rating"`
	AgeRestriction int              `json:"ageRestriction"`
	Logo           *string          `json:"logo"`
	Background     *string          `json:"background"`
	Price          decimal.Decimal  `json:"price"`
	Count          int              `json:"count"`
}

// ListProductsRequest binds the catalog query. Genres accepts repeated or
// comma-separated values.
type ListProductsRequest struct {
	Page      int      `form:"page,default=1" binding:"min=1"`
	PageSize  int      `form:"pageSize,default=10" binding:"min=1,max=100"`
	Genres    []string `form:"genres"`
	AgeRange  string   `form:"ageRange,default=All" binding:"oneof=All 6+ 12+ 18+"`
	SortBy    string   `form:"sortBy,default=Rating" binding:"oneof=Rating Price"`
	SortOrder string   `form:"sortOrder,default=asc" binding:"oneof=asc desc"`
}

type PagedProductsResponse struct {
	TotalItems  int               `json:"totalItems"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	PageSize    int               `json:"pageSize"`
	Items       []ProductResponse `json:"items"`
}

// SearchRequest has no Limit default; an omitted limit is rejected by the service.
type SearchRequest struct {
	Term   string `form:"term"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type SearchGameResponse struct {
	Name string `json:"name"`
}

type PlatformPopularityResponse struct {
	PlatformName model.Platform `json:"platformName"`
	Count        int            `json:"count"`
}

// --- Ratings ---

type EditRatingRequest struct {
	GameName  string `json:"gameName" binding:"required"`
	NewRating int    `json:"newRating" binding:"required,min=1,max=5"`
}

type RatingResponse struct {
	GameName    string `json:"gameName"`
	NewRating   int    `json:"newRating"`
	TotalRating int    `json:"totalRating"`
}

// --- Orders ---

type CreateOrderItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,min=1"`
	Amount    int   `json:"amount" binding:"required,min=1"`
}

type UpdateOrderItemRequest struct {
	OrderID   int64 `json:"orderId" binding:"required,min=1"`
	ProductID int64 `json:"productId" binding:"required,min=1"`
	NewAmount int   `json:"newAmount" binding:"required,min=1"`
}

type OrderResponse struct {
	OrderID      int64               `json:"orderId"`
	CreationDate time.Time           `json:"creationDate"`
	Status       model.OrderStatus   `json:"status"`
	Amount       int                 `json:"amount"`
	TotalPrice   decimal.Decimal     `json:"totalPrice"`
	Items        []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Amount      int             `json:"amount"`
	Price       decimal.Decimal `json:"price"`
}

// --- User ---

type UserProfileResponse struct {
	Email           string  `json:"email"`
	UserName        string  `json:"userName"`
	PhoneNumber     *string `json:"phoneNumber"`
	AddressDelivery *string `json:"addressDelivery"`
	Age             uint8   `json:"age"`
}

type UpdateUserRequest struct {
	UserName        string `json:"userName" binding:"required,max=256"`
	PhoneNumber     string `json:"phoneNumber" binding:"required,phone"`
	AddressDelivery string `json:"addressDelivery" binding:"required,max=500"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}
