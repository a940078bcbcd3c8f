package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID              uuid.UUID
	Email           string
	UserName        string
	Password        string
	PhoneNumber     *string
	AddressDelivery *string
	Age             uint8
	Role            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Platform string

const (
	PlatformPC          Platform = "PC"
	PlatformXbox        Platform = "Xbox"
	PlatformPlayStation Platform = "PlayStation"
	PlatformNintendo    Platform = "Nintendo"
	PlatformMobile      Platform = "Mobile"
	PlatformWeb         Platform = "Web"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformPC, PlatformXbox, PlatformPlayStation, PlatformNintendo, PlatformMobile, PlatformWeb:
		return true
	}
	return false
}

// RatingTier is the editorial tier of a product, independent of user ratings.
type RatingTier string

const (
	OneStar    RatingTier = "OneStar"
	TwoStars   RatingTier = "TwoStars"
	ThreeStars RatingTier = "ThreeStars"
	FourStars  RatingTier = "FourStars"
	FiveStars  RatingTier = "FiveStars"
)

func (r RatingTier) Valid() bool {
	switch r {
	case OneStar, TwoStars, ThreeStars, FourStars, FiveStars:
		return true
	}
	return false
}

type Product struct {
	ID             int64
	Name           string
	Platform       Platform
	DateCreated    time.Time
	TotalRating    int
	Genre          *string
	Rating         RatingTier
	AgeRestriction int
	Logo           *string
	Background     *string
	Price          decimal.Decimal
	Count          int
}

type PlatformCount struct {
	Platform Platform
	Count    int
}

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusDelivered marks a bought order; there is no separate shipping state.
	OrderStatusDelivered OrderStatus = "Delivered"
)

type Order struct {
	ID           int64
	UserID       uuid.UUID
	Status       OrderStatus
	CreationDate time.Time
	Items        []OrderItem
}

// Amount is the total quantity over all items.
func (o *Order) Amount() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// IsFree reports whether the snapshotted price is zero. Only free items may change quantity.
func (i OrderItem) IsFree() bool { return i.Price.IsZero() }

type PurchaseMessage struct {
	OrderID int64     `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}
