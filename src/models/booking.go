package models

import "pbs/src/types"

// Booking is a lead/inquiry record captured from the public form. It is
// independent of Payment and Order.
type Booking struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	ProductID   *uint               `json:"product_id,omitempty"`
	SessionName string              `json:"session_name,omitempty"`
	HeardFrom   string              `json:"heard_from,omitempty"`
	Message     string              `json:"message,omitempty"`
	Status      types.BookingStatus `gorm:"default:'pending'" json:"status"`

	Product *Product `gorm:"foreignKey:product_id" json:"product,omitempty"`

	types.Timestamps
}
