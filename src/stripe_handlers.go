package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded":
			var intent stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			// the raw payload carries customer as a bare id
			customerId := gjson.GetBytes(event.Data.Raw, "customer").String()
			productIdVal := gjson.GetBytes(event.Data.Raw, "metadata.product_id")
			if !productIdVal.Exists() {
				// without the product id the payment can never reconcile
				// into an order, so do not record it at all
				log.Printf("[Stripe] Intent %s carries no product metadata, skipping\n", intent.ID)
				break
			}

			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var existing models.Payment
				err := tx.
					Model(&models.Payment{}).
					Where("reference_id = ?", intent.ID).
					First(&existing).
					Error
				if err == nil {
					// originating request already persisted this charge
					return nil
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				amount := intent.AmountReceived
				if amount == 0 {
					amount = intent.Amount
				}
				payment := models.Payment{
					ID:            uuid.New(),
					ProductID:     uint(productIdVal.Uint()),
					UserEmail:     intent.ReceiptEmail,
					CustomerID:    customerId,
					ReferenceID:   intent.ID,
					Amount:        amount,
					Currency:      strings.ToUpper(string(intent.Currency)),
					PaymentMethod: "card",
					Status:        types.PAYMENT_COMPLETED,
				}
				return tx.Create(&payment).Error
			})
			if err != nil {
				log.Printf("Error recording payment for intent %s: %s\n", intent.ID, err.Error())
			}
		case "payment_intent.payment_failed":
			intentId := gjson.GetBytes(event.Data.Raw, "id").String()
			log.Printf("[Stripe] Payment intent %s failed\n", intentId)
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
