package models

import (
	"time"

	"pbs/src/types"

	"github.com/google/uuid"
)

// Payment is the immutable record of a single charge attempt's
// processor-reported outcome. Rows are never updated after creation.
type Payment struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	ProductID     uint                `json:"product_id"`
	UserID        *uint               `json:"user_id,omitempty"`
	UserEmail     string              `json:"user_email"`
	CustomerID    string              `json:"customer_id,omitempty"`
	SourceID      string              `json:"source_id,omitempty"`
	ReferenceID   string              `gorm:"uniqueIndex" json:"reference_id"`
	Amount        int64               `json:"amount"`
	Currency      string              `json:"currency"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	Status        types.PaymentStatus `json:"status"`
	Metadata      types.JSONB         `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time           `gorm:"autoCreateTime:nano" json:"created_at"`

	Product Product `gorm:"foreignKey:product_id" json:"-"`
}
