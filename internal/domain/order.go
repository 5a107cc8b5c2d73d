package domain

import "time"

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusTicketed  OrderStatus = "TICKETED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid            PaymentStatus = "UNPAID"
	PaymentStatusPaid              PaymentStatus = "PAID"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusFullyRefunded     PaymentStatus = "FULLY_REFUNDED"
)

type Order struct {
	ID               int64
	OrderNo          string
	UserID           int64
	TotalAmountCents int64
	Currency         string
	OrderStatus      OrderStatus
	PaymentStatus    PaymentStatus
	ContactName      string
	ContactPhone     string
	ContactEmail     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Passenger struct {
	ID           int64
	OrderID      int64
	FullName     string
	DocumentType string
	DocumentNo   string
	Phone        string
	CreatedAt    time.Time
}
