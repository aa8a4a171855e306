package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const StatusPending = "Pending"

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"    json:"id"`
	Name         string    `gorm:"not null"                json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"    json:"email"`
	PasswordHash string    `gorm:"not null"                json:"-"`
	Phone        string    `json:"phone"`
	IsAdmin      bool      `gorm:"default:false"           json:"isAdmin"`
	Street       string    `json:"street"`
	Apartment    string    `json:"apartment"`
	Zip          string    `json:"zip"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Category struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"not null"             json:"name"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"            json:"id"`
	Name            string          `gorm:"not null"                        json:"name"`
	Description     string          `gorm:"not null"                        json:"description"`
	RichDescription string          `json:"richDescription"`
	Image           string          `json:"image"`
	Brand           string          `json:"brand"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"price"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;index;not null"        json:"categoryId"`
	Category        *Category       `gorm:"foreignKey:CategoryID"           json:"category,omitempty"`
	CountInStock    int             `gorm:"not null;default:0"              json:"countInStock"`
	Rating          float64         `gorm:"default:0"                       json:"rating"`
	NumReviews      int             `gorm:"default:0"                       json:"numReviews"`
	IsFeatured      bool            `gorm:"index;default:false"             json:"isFeatured"`
	DateCreated     time.Time       `gorm:"autoCreateTime"                  json:"dateCreated"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Quantity  int       `gorm:"not null"                 json:"quantity"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"       json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID"     json:"product,omitempty"`
	Position  int       `gorm:"not null;default:0"       json:"-"`
}

type Order struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"        json:"id"`
	OrderItems       []OrderItem     `gorm:"foreignKey:OrderID"          json:"orderItems"`
	ShippingAddress1 string          `gorm:"not null"                    json:"shippingAddress1"`
	ShippingAddress2 string          `json:"shippingAddress2"`
	City             string          `gorm:"not null"                    json:"city"`
	Zip              string          `gorm:"not null"                    json:"zip"`
	Country          string          `gorm:"not null"                    json:"country"`
	Phone            string          `gorm:"not null"                    json:"phone"`
	Status           string          `gorm:"not null;default:'Pending'"  json:"status"`
	TotalPrice       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"totalPrice"`
	UserID           uuid.UUID       `gorm:"type:uuid;index;not null"    json:"userId"`
	User             *User           `gorm:"foreignKey:UserID"           json:"user,omitempty"`
	DateOrdered      time.Time       `gorm:"index"                       json:"dateOrdered"`
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error      { ensureID(&u.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error  { ensureID(&c.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error   { ensureID(&p.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error { ensureID(&i.ID); return nil }

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.DateOrdered.IsZero() {
		o.DateOrdered = time.Now().UTC()
	}
	return nil
}

func All() []any {
	return []any{&User{}, &Category{}, &Product{}, &Order{}, &OrderItem{}}
}
