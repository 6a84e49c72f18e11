package common

import (
	"context"
	"fmt"
	"log"
	"os"

	"pbs/src/config"
	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/lib/mailer"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StepProduct  = "product"
	StepCustomer = "customer"
	StepCharge   = "charge"
	StepPersist  = "persist"
)

// CheckoutError reports which step of the checkout sequence failed. No step
// is retried; the caller must resubmit.
type CheckoutError struct {
	Step string
	Err  error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed at step %s: %s", e.Step, e.Err.Error())
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// ProcessPayment runs the full checkout sequence: resolve the product,
// find-or-create the processor customer, submit the charge, then persist the
// Payment and Order pair in one transaction. The persisted amount and
// currency are always taken from the processor's approved charge, never from
// the client request. The receipt email is fire-and-forget after commit.
func ProcessPayment(ctx context.Context, userID *uint, params *types.CreatePaymentRequestBody) (*models.Order, error) {
	gdb := db.GetDb()

	var product models.Product
	if err := gdb.
		Model(&models.Product{}).
		Where("id = ?", params.ProductID).
		First(&product).
		Error; err != nil {
		return nil, &CheckoutError{Step: StepProduct, Err: err}
	}

	currency := params.Currency
	if currency == "" {
		currency = config.DEFAULT_CURRENCY
	}

	processor := lib.GetProcessor()
	customerID, err := processor.FindOrCreateCustomer(ctx, params.UserEmail, params.UserName, params.UserPhone)
	if err != nil {
		return nil, &CheckoutError{Step: StepCustomer, Err: err}
	}

	referenceID := uuid.NewString()
	result, err := processor.CreateCardCharge(ctx, &lib.ChargeParams{
		Amount:         params.Amount,
		Currency:       currency,
		SourceID:       params.SourceID,
		CustomerID:     customerID,
		Email:          params.UserEmail,
		Phone:          params.UserPhone,
		ProductID:      product.ID,
		ReferenceID:    referenceID,
		IdempotencyKey: referenceID,
	})
	if err != nil {
		return nil, &CheckoutError{Step: StepCharge, Err: err}
	}
	if result.Status != types.PAYMENT_COMPLETED {
		return nil, &CheckoutError{Step: StepCharge, Err: fmt.Errorf("charge not completed: status is %s", result.Status)}
	}

	payment := models.Payment{
		ID:            uuid.New(),
		ProductID:     product.ID,
		UserID:        userID,
		UserEmail:     params.UserEmail,
		CustomerID:    customerID,
		SourceID:      params.SourceID,
		ReferenceID:   result.ReferenceID,
		Amount:        result.Amount,
		Currency:      result.Currency,
		PaymentMethod: result.PaymentMethod,
		Status:        result.Status,
		Metadata: types.JSONB{
			"user_name":  params.UserName,
			"user_phone": params.UserPhone,
			"date":       params.Date,
			"time":       params.Time,
			"address":    params.Address,
			"note":       params.Note,
		},
	}
	order := models.Order{
		UserID:        userID,
		ProductID:     product.ID,
		UserName:      params.UserName,
		UserEmail:     params.UserEmail,
		UserPhone:     utils.FormatPhone(params.UserPhone),
		ProductTitle:  product.Title,
		ProductPrice:  product.Price,
		Date:          params.Date,
		Time:          params.Time,
		Address:       params.Address,
		OrderStatus:   types.ORDER_PENDING,
		Currency:      result.Currency,
		PaidAmount:    result.Amount,
		PaymentMethod: result.PaymentMethod,
		PaymentStatus: string(result.Status),
		Note:          params.Note,
	}
	// The charge already happened on the processor side; the local Payment
	// and Order rows commit or roll back together.
	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		order.PaymentID = payment.ID
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error persisting payment %s: %s\n", result.ReferenceID, err.Error())
		return nil, &CheckoutError{Step: StepPersist, Err: err}
	}

	go func() {
		input := &lib.SendMailInput{
			From:     os.Getenv("MAIL_FROM"),
			FromName: os.Getenv("MAIL_FROM_NAME"),
			To:       []string{order.UserEmail},
			Subject:  fmt.Sprintf("Receipt for your %s session", order.ProductTitle),
			Body: utils.OrderReceiptEmailBody(
				order.UserName,
				order.ProductTitle,
				utils.FormatAmount(order.PaidAmount, order.Currency),
				order.Date,
				order.Time,
				order.ID,
			),
			Html: true,
		}
		if err := mailer.NewMailerMessage(input); err != nil {
			log.Printf("[MAILER] error sending receipt to %s: %s\n", order.UserEmail, err.Error())
		}
	}()

	return &order, nil
}
