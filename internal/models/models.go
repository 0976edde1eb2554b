package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidStatus = errors.New("invalid status")
)

func init() {
	// the backend expects numbers, not quoted decimals
	decimal.MarshalJSONWithoutQuotes = true
}

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleStore  Role = "STORE"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleStore, RoleAdmin:
		return true
	}
	return false
}

type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UnmarshalJSON accepts both "id" and the backend's "_id".
func (p *Principal) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Email   string `json:"email"`
		Role    Role   `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = raw.ID
	if p.ID == "" {
		p.ID = raw.MongoID
	}
	p.Email = raw.Email
	p.Role = raw.Role
	return nil
}

type Session struct {
	Principal Principal `json:"principal"`
	Token     string    `json:"token"`
}

func (s Session) Validate() error {
	if s.Token == "" {
		return errors.New("session has no token")
	}
	if s.Principal.ID == "" {
		return errors.New("session has no principal id")
	}
	if !s.Principal.Role.Valid() {
		return fmt.Errorf("session role %q: %w", s.Principal.Role, ErrInvalidRole)
	}
	return nil
}

// Ref is a reference to a remote entity that the backend sends either as a
// bare id or as a populated object.
type Ref struct {
	ID   string
	Name string
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Name == "" {
		return json.Marshal(r.ID)
	}
	return json.Marshal(struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}{r.ID, r.Name})
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Ref{}
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = Ref{ID: id}
		return nil
	}
	var obj struct {
		ID      string `json:"_id"`
		PlainID string `json:"id"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("ref: %w", err)
	}
	r.ID = obj.ID
	if r.ID == "" {
		r.ID = obj.PlainID
	}
	r.Name = obj.Name
	return nil
}

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images,omitempty"`
	Category    Ref             `json:"category"`
	Store       Ref             `json:"store"`
}

type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type StoreStatus string

const (
	StorePending  StoreStatus = "PENDING"
	StoreApproved StoreStatus = "APPROVED"
	StoreRejected StoreStatus = "REJECTED"
)

type Store struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Owner       Ref         `json:"owner"`
	Status      StoreStatus `json:"status"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, st := range orderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("order status %q: %w", s, ErrInvalidStatus)
	}
	return st, nil
}

type ShippingAddress struct {
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"       validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country"    validate:"required"`
}

type OrderItem struct {
	Product  Ref             `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Store    Ref             `json:"store"`
}

type Order struct {
	ID              string          `json:"_id"`
	User            Ref             `json:"user"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CartLineItem is a product snapshot plus the chosen quantity. The product
// fields are flattened so the persisted layout is {...product, quantity, store}.
type CartLineItem struct {
	Product
	Quantity int `json:"quantity"`
}

func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
