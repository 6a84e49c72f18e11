package models

import (
	"time"

	"pbs/src/types"
)

type User struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	Name             string     `json:"name,omitempty"`
	Email            string     `gorm:"uniqueIndex" json:"email"`
	Password         string     `json:"-"`
	Phone            string     `json:"phone,omitempty"`
	Role             string     `gorm:"default:'user'" json:"role"`
	StripeCustomerId *string    `json:"-"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	Orders []Order `gorm:"foreignKey:user_id" json:"orders,omitempty"`

	types.Timestamps
}
