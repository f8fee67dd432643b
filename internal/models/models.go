package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentPaid              PaymentStatus = "PAID"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

type User struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name          string    `gorm:"not null"                      json:"name"`
	Email         string    `gorm:"uniqueIndex;not null"          json:"email"`
	PasswordHash  string    `gorm:"not null"                      json:"-"`
	Role          Role      `gorm:"not null;default:CUSTOMER"     json:"role"`
	EmailVerified bool      `gorm:"default:false"                 json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Address is a shipping snapshot owned by one user. A fresh row is created
// for every order and never mutated after the order references it.
type Address struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID     uint      `gorm:"index;not null"            json:"user_id"`
	Type       string    `gorm:"not null;default:SHIPPING" json:"type"`
	FirstName  string    `gorm:"not null"                  json:"first_name"`
	LastName   string    `gorm:"not null"                  json:"last_name"`
	Company    string    `json:"company,omitempty"`
	Address1   string    `gorm:"not null"                  json:"address1"`
	Address2   string    `json:"address2,omitempty"`
	City       string    `gorm:"not null"                  json:"city"`
	State      string    `gorm:"not null"                  json:"state"`
	PostalCode string    `gorm:"not null"                  json:"postal_code"`
	Country    string    `gorm:"not null"                  json:"country"`
	Phone      string    `gorm:"not null"                  json:"phone"`
	IsDefault  bool      `gorm:"default:false"             json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	SKU           string          `gorm:"uniqueIndex;not null"          json:"sku"`
	Slug          string          `gorm:"uniqueIndex;not null"          json:"slug"`
	Name          string          `gorm:"not null"                      json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"price"`
	Quantity      int             `gorm:"not null;check:quantity >= 0"  json:"quantity"`
	IsActive      bool            `gorm:"default:true"                  json:"is_active"`
	Featured      bool            `gorm:"default:false"                 json:"featured"`
	TrackQuantity bool            `gorm:"default:true"                  json:"track_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Order struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null"         json:"order_number"`
	UserID        uint            `gorm:"index;not null"               json:"user_id"`
	AddressID     uint            `gorm:"not null"                     json:"address_id"`
	Status        OrderStatus     `gorm:"not null;default:PENDING"     json:"status"`
	PaymentStatus PaymentStatus   `gorm:"not null;default:PENDING"     json:"payment_status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"subtotal"`
	Shipping      decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"shipping"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"total"`
	Currency      string          `gorm:"not null;default:USD"         json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ShippedAt     *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`

	User    User        `gorm:"foreignKey:UserID"    json:"user,omitempty"`
	Address Address     `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	Items   []OrderItem `gorm:"foreignKey:OrderID"   json:"items,omitempty"`
}

// OrderItem captures the unit price at order time, decoupled from the
// product's live price.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// IsAdmin reports whether the role may use the admin back-office.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded,
		PaymentPartiallyRefunded:
		return true
	}
	return false
}
