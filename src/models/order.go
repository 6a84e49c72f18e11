package models

import (
	"pbs/src/types"

	"github.com/google/uuid"
)

// Order records a paid transaction. Product and user fields are denormalized
// snapshots taken at purchase time; PaidAmount and Currency always come from
// the processor's approved charge, not the client request.
type Order struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    *uint     `json:"user_id,omitempty"`
	ProductID uint      `json:"product_id"`
	PaymentID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"payment_id"`

	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	UserPhone    string `json:"user_phone,omitempty"`
	ProductTitle string `json:"product_title"`
	ProductPrice int64  `json:"product_price"`

	Date          string            `json:"date"`
	Time          string            `json:"time"`
	Address       string            `json:"address,omitempty"`
	OrderStatus   types.OrderStatus `gorm:"default:'pending'" json:"order_status"`
	Currency      string            `json:"currency"`
	PaidAmount    int64             `json:"paid_amount"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	PaymentStatus string            `json:"payment_status"`
	Note          string            `json:"note,omitempty"`

	User    *User   `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Product Product `gorm:"foreignKey:product_id" json:"-"`
	Payment Payment `gorm:"foreignKey:payment_id" json:"-"`

	types.Timestamps
}
