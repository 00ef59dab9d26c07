// Package domain holds the record types served to the dashboard and to
// customers. Each entity is its own struct so list specs get compile-time
// checked field selectors; optional values are pointers.
package domain

import (
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is an account row. Customers and staff are both users; the list
// screens use the Customer and StaffMember projections below.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	Role           string    `db:"role" json:"role"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	IsBlocked      bool      `db:"is_blocked" json:"is_blocked"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Customer is a customer account with spend aggregates.
// Totals are nil when the customer has no orders / reservations.
type Customer struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	Name              string           `db:"name" json:"name"`
	Email             string           `db:"email" json:"email"`
	Phone             string           `db:"phone" json:"phone"`
	IsBlocked         bool             `db:"is_blocked" json:"is_blocked"`
	OrderCount        int64            `db:"order_count" json:"order_count"`
	OrdersTotal       *decimal.Decimal `db:"orders_total" json:"orders_total"`
	ReservationsTotal *decimal.Decimal `db:"reservations_total" json:"reservations_total"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// TotalSpend is orders plus reservations, missing amounts counting as zero.
func (c Customer) TotalSpend() decimal.Decimal {
	return Amount(c.OrdersTotal).Add(Amount(c.ReservationsTotal))
}

// StaffMember is an admin or staff account.
type StaffMember struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Role      string    `db:"role" json:"role"`
	IsBlocked bool      `db:"is_blocked" json:"is_blocked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MenuItem carries its category name joined in; the name is empty when the
// category was removed.
type MenuItem struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	CategoryID   *uuid.UUID      `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name"`
	Name         string          `db:"name" json:"name"`
	Slug         string          `db:"slug" json:"slug"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
	ImageURL     string          `db:"image_url" json:"image_url"`
	IsAvailable  bool            `db:"is_available" json:"is_available"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Package is a reservable bundle priced per guest.
type Package struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Slug        string          `db:"slug" json:"slug"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	MinGuests   int32           `db:"min_guests" json:"min_guests"`
	MaxGuests   int32           `db:"max_guests" json:"max_guests"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type Order struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Code          string          `db:"code" json:"code"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerPhone string          `db:"customer_phone" json:"customer_phone"`
	OrderType     string          `db:"order_type" json:"order_type"`
	TableNumber   *string         `db:"table_number" json:"table_number"`
	Status        string          `db:"status" json:"status"`
	Notes         *string         `db:"notes" json:"notes"`
	Total         decimal.Decimal `db:"total" json:"total"`
	ItemsSummary  string          `db:"items_summary" json:"items_summary"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	Items         []OrderItem     `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	OrderID    uuid.UUID       `db:"order_id" json:"order_id"`
	MenuItemID uuid.UUID       `db:"menu_item_id" json:"menu_item_id"`
	Name       string          `db:"name" json:"name"`
	Quantity   int32           `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal   decimal.Decimal `db:"subtotal" json:"subtotal"`
	Notes      *string         `db:"notes" json:"notes"`
}

// Reservation books a package for a date and an optional clock time
// ("HH:MM"). A reservation without a parseable date sorts as 1970-01-01.
type Reservation struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Code            string          `db:"code" json:"code"`
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerPhone   string          `db:"customer_phone" json:"customer_phone"`
	PackageID       *uuid.UUID      `db:"package_id" json:"package_id"`
	PackageName     string          `db:"package_name" json:"package_name"`
	ReservationDate time.Time       `db:"reservation_date" json:"reservation_date"`
	ReservationTime string          `db:"reservation_time" json:"reservation_time"`
	Guests          int32           `db:"guests" json:"guests"`
	Total           decimal.Decimal `db:"total" json:"total"`
	Status          string          `db:"status" json:"status"`
	Notes           *string         `db:"notes" json:"notes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

type Review struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	CustomerName string     `db:"customer_name" json:"customer_name"`
	MenuItemID   *uuid.UUID `db:"menu_item_id" json:"menu_item_id"`
	MenuItemName string     `db:"menu_item_name" json:"menu_item_name"`
	Rating       int32      `db:"rating" json:"rating"`
	Comment      string     `db:"comment" json:"comment"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type Favorite struct {
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	MenuItemID   uuid.UUID       `db:"menu_item_id" json:"menu_item_id"`
	MenuItemName string          `db:"menu_item_name" json:"menu_item_name"`
	Price        decimal.Decimal `db:"price" json:"price"`
	IsAvailable  bool            `db:"is_available" json:"is_available"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Amount dereferences an optional amount, treating nil as zero.
func Amount(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// Text dereferences an optional string.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Initial returns the upper-cased first letter of a name, or "?" for an
// empty name. Used for avatar placeholders in exports and responses.
func Initial(name string) string {
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		return string(unicode.ToUpper(r))
	}
	return "?"
}
