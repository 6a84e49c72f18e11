package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_CANCELED  BookingStatus = "cancelled"
)

type OrderStatus string

const (
	ORDER_PENDING    OrderStatus = "pending"
	ORDER_PROCESSING OrderStatus = "processing"
	ORDER_COMPLETED  OrderStatus = "completed"
	ORDER_CANCELED   OrderStatus = "cancelled"
)

// PaymentStatus mirrors the processor's reported charge outcome.
type PaymentStatus string

const (
	PAYMENT_COMPLETED PaymentStatus = "COMPLETED"
	PAYMENT_PENDING   PaymentStatus = "PENDING"
	PAYMENT_FAILED    PaymentStatus = "FAILED"
	PAYMENT_CANCELED  PaymentStatus = "CANCELED"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Date        string `json:"date" binding:"required,bookabledate"`
	Time        string `json:"time" binding:"required"`
	ProductID   *uint  `json:"product_id,omitempty"`
	SessionName string `json:"session_name,omitempty"`
	HeardFrom   string `json:"heard_from,omitempty"`
	Message     string `json:"message,omitempty"`
}

type UpdateBookingRequestBody struct {
	Status BookingStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

type CreateProductRequestBody struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	Duration    string `json:"duration,omitempty"`
	PhotoCount  uint   `json:"photo_count,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CTAText     string `json:"cta_text,omitempty"`
}

type UpdateProductRequestBody struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,gt=0"`
	Duration    *string `json:"duration,omitempty"`
	PhotoCount  *uint   `json:"photo_count,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	CTAText     *string `json:"cta_text,omitempty"`
}

type CreatePortfolioItemRequestBody struct {
	Title       string `json:"title" binding:"required"`
	Category    string `json:"category,omitempty"`
	ImageURL    string `json:"image_url" binding:"required"`
	Description string `json:"description,omitempty"`
}

type CreateCarouselImageRequestBody struct {
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"image_url" binding:"required"`
}

type ReorderCarouselRequestBody struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

type CreatePaymentRequestBody struct {
	SourceID  string `json:"source_id" binding:"required"`
	ProductID uint   `json:"product_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency,omitempty"`
	UserName  string `json:"user_name" binding:"required"`
	UserEmail string `json:"user_email" binding:"required,email"`
	UserPhone string `json:"user_phone,omitempty"`
	Date      string `json:"date" binding:"required,bookabledate"`
	Time      string `json:"time" binding:"required"`
	Address   string `json:"address,omitempty"`
	Note      string `json:"note,omitempty"`
}

type UpdateOrderRequestBody struct {
	OrderStatus   *OrderStatus `json:"order_status,omitempty" binding:"omitempty,oneof=pending processing completed cancelled"`
	PaymentStatus *string      `json:"payment_status,omitempty"`
	Note          *string      `json:"note,omitempty"`
}

type RegisterRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequestBody struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type UpdateUserRequestBody struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Role  *string `json:"role,omitempty" binding:"omitempty,oneof=user admin"`
}

type ForgotPasswordRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyResetTokenRequestBody struct {
	Token string `json:"token" binding:"required"`
}

type ResetPasswordRequestBody struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}
