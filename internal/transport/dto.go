package transport

import (
	"github.com/shopspring/decimal"
)

type CategoryRequest struct {
	Name  string `json:"name"  validate:"required,max=120"`
	Icon  string `json:"icon"  validate:"max=120"`
	Color string `json:"color" validate:"max=32"`
}

type PatchCategoryRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=120"`
	Icon  *string `json:"icon"  validate:"omitempty,max=120"`
	Color *string `json:"color" validate:"omitempty,max=32"`
}

// CreateProductRequest is bound from multipart form fields; the image travels
// as a separate file part.
type CreateProductRequest struct {
	Name            string          `form:"name"            json:"name"            validate:"required,max=200"`
	Description     string          `form:"description"     json:"description"     validate:"required"`
	RichDescription string          `form:"richDescription" json:"richDescription"`
	Brand           string          `form:"brand"           json:"brand"`
	Price           decimal.Decimal `form:"-"               json:"price"`
	Category        string          `form:"category"        json:"category"        validate:"required,uuid"`
	CountInStock    int             `form:"countInStock"    json:"countInStock"    validate:"min=0,max=255"`
	Rating          float64         `form:"rating"          json:"rating"          validate:"min=0"`
	NumReviews      int             `form:"numReviews"      json:"numReviews"      validate:"min=0"`
	IsFeatured      bool            `form:"isFeatured"      json:"isFeatured"`
}

type PatchProductRequest struct {
	Name            *string          `json:"name"            validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description"     validate:"omitempty,min=1"`
	RichDescription *string          `json:"richDescription"`
	Image           *string          `json:"image"           validate:"omitempty,url"`
	Brand           *string          `json:"brand"`
	Price           *decimal.Decimal `json:"price"`
	Category        *string          `json:"category"        validate:"omitempty,uuid"`
	CountInStock    *int             `json:"countInStock"    validate:"omitempty,min=0,max=255"`
	Rating          *float64         `json:"rating"          validate:"omitempty,min=0"`
	NumReviews      *int             `json:"numReviews"      validate:"omitempty,min=0"`
	IsFeatured      *bool            `json:"isFeatured"`
}

type OrderItemRequest struct {
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Product  string `json:"product"  validate:"required,uuid"`
}

type CreateOrderRequest struct {
	OrderItems       []OrderItemRequest `json:"orderItems"       validate:"required,min=1,dive"`
	ShippingAddress1 string             `json:"shippingAddress1" validate:"required"`
	ShippingAddress2 string             `json:"shippingAddress2"`
	City             string             `json:"city"             validate:"required"`
	Zip              string             `json:"zip"              validate:"required"`
	Country          string             `json:"country"          validate:"required"`
	Phone            string             `json:"phone"            validate:"required"`
	Status           string             `json:"status"`
	User             string             `json:"user"             validate:"required,uuid"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,max=40"`
}

type RegisterRequest struct {
	Name      string `json:"name"      validate:"required,max=120"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=1"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

type PatchUserRequest struct {
	Name      *string `json:"name"      validate:"omitempty,min=1,max=120"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Password  *string `json:"password"`
	Phone     *string `json:"phone"`
	IsAdmin   *bool   `json:"isAdmin"`
	Street    *string `json:"street"`
	Apartment *string `json:"apartment"`
	Zip       *string `json:"zip"`
	City      *string `json:"city"`
	Country   *string `json:"country"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  string `json:"user"`
	Token string `json:"token"`
}
