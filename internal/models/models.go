package models

import (
	"time"
)

const (
	// Order lifecycle: payment_complete is set at checkout, "Order Complete"
	// by the shipment endpoint. Two states, no intermediate shipping status.
	OrderStatusPaymentComplete = "payment_complete"
	OrderStatusComplete        = "Order Complete"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"unique;not null"     json:"token"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	Role      string    `gorm:"not null"            json:"role"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
}

type Seller struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null"                 json:"name"`
	Info        string `json:"info"`
	Location    string `gorm:"index"                    json:"location"`
	PicturePath string `json:"picture_path"`
}

type Address struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint   `gorm:"index;not null"           json:"user_id"`
	Street     string `gorm:"not null"                 json:"street"`
	City       string `gorm:"not null"                 json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                 json:"price"`
	PicturePath string    `json:"picture_path"`
	SellerID    uint      `gorm:"index;not null"           json:"seller_id"`
	CategoryID  uint      `gorm:"index"                    json:"category_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime"           json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                 json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  uint `gorm:"not null;check:quantity>0"                  json:"quantity"`
}

type Order struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	UserID    uint      `gorm:"index;not null"  json:"user_id"`
	AddressID uint      `gorm:"not null"        json:"address_id"`
	Status    string    `gorm:"not null"        json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime"  json:"created_at"`
}

// OrderItem carries no price column: line cost is resolved by joining the
// product's current price at read time, so historical order value drifts if
// the product is repriced. Preserved from the observed system.
type OrderItem struct {
	ID        uint `gorm:"primaryKey"                json:"id"`
	OrderID   uint `gorm:"index;not null"            json:"order_id"`
	ProductID uint `gorm:"not null"                  json:"product_id"`
	Quantity  uint `gorm:"not null;check:quantity>0" json:"quantity"`
}

type Feedback struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	ProductID uint      `gorm:"index;not null"           json:"product_id"`
	Rating    int       `gorm:"not null"                 json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime"           json:"created_at"`
}
