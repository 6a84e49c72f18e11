package lib

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pbs/src/types"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

type ChargeParams struct {
	Amount         int64
	Currency       string
	SourceID       string
	CustomerID     string
	Email          string
	Phone          string
	ProductID      uint
	ReferenceID    string
	IdempotencyKey string
}

type ChargeResult struct {
	Status        types.PaymentStatus
	Amount        int64
	Currency      string
	ReferenceID   string
	PaymentMethod string
}

// Processor is the card-payment backend. The Stripe implementation is the
// default; tests swap in a fake through NewProcessor.
type Processor interface {
	FindOrCreateCustomer(ctx context.Context, email string, name string, phone string) (string, error)
	CreateCardCharge(ctx context.Context, params *ChargeParams) (*ChargeResult, error)
}

var processor Processor

func GetProcessor() Processor {
	if processor != nil {
		return processor
	}
	processor = &stripeProcessor{}
	return processor
}

// NewProcessor Replace payment processor instance with custom implementation
func NewProcessor(p Processor) Processor {
	processor = p
	return processor
}

type stripeProcessor struct{}

func (s *stripeProcessor) FindOrCreateCustomer(ctx context.Context, email string, name string, phone string) (string, error) {
	sc := GetStripeClient()
	query := fmt.Sprintf("email:'%s'", email)
	searchParams := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{Query: query},
	}
	for cus, err := range sc.V1Customers.Search(ctx, searchParams) {
		if err != nil {
			return "", err
		}
		return cus.ID, nil
	}
	createParams := &stripe.CustomerCreateParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	if phone != "" {
		createParams.Phone = stripe.String(phone)
	}
	cus, err := sc.V1Customers.Create(ctx, createParams)
	if err != nil {
		return "", err
	}
	return cus.ID, nil
}

func (s *stripeProcessor) CreateCardCharge(ctx context.Context, params *ChargeParams) (*ChargeResult, error) {
	sc := GetStripeClient()
	createParams := &stripe.PaymentIntentCreateParams{
		Params: stripe.Params{
			IdempotencyKey: stripe.String(params.IdempotencyKey),
			Metadata: map[string]string{
				"reference_id": params.ReferenceID,
				"product_id":   strconv.FormatUint(uint64(params.ProductID), 10),
			},
		},
		Amount:        stripe.Int64(params.Amount),
		Currency:      stripe.String(strings.ToLower(params.Currency)),
		Customer:      stripe.String(params.CustomerID),
		PaymentMethod: stripe.String(params.SourceID),
		Confirm:       stripe.Bool(true),
		ReceiptEmail:  stripe.String(params.Email),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	intent, err := sc.V1PaymentIntents.Create(ctx, createParams)
	if err != nil {
		return nil, err
	}
	amount := intent.AmountReceived
	if amount == 0 {
		amount = intent.Amount
	}
	result := &ChargeResult{
		Status:        paymentStatusFromIntent(intent.Status),
		Amount:        amount,
		Currency:      strings.ToUpper(string(intent.Currency)),
		ReferenceID:   intent.ID,
		PaymentMethod: "card",
	}
	return result, nil
}

func paymentStatusFromIntent(status stripe.PaymentIntentStatus) types.PaymentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return types.PAYMENT_COMPLETED
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresAction:
		return types.PAYMENT_PENDING
	case stripe.PaymentIntentStatusCanceled:
		return types.PAYMENT_CANCELED
	default:
		return types.PAYMENT_FAILED
	}
}
