package common

import (
	"log"

	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"

	"gorm.io/gorm"
)

func metadataString(md types.JSONB, key string) string {
	if md == nil {
		return ""
	}
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

// ReconcileOrphanedPayments creates the missing Order for every completed
// Payment that has none. Orphans appear when a charge succeeded on the
// processor side but the originating request died before the local pair
// committed and the webhook backfilled the Payment on its own.
func ReconcileOrphanedPayments() {
	gdb := db.GetDb()
	var payments []models.Payment
	err := gdb.
		Model(&models.Payment{}).
		Joins("LEFT JOIN orders ON orders.payment_id = payments.id").
		Where("orders.id IS NULL").
		Where("payments.status = ?", types.PAYMENT_COMPLETED).
		Find(&payments).
		Error
	if err != nil {
		log.Printf("[reconcile] Error querying orphaned payments: %s\n", err.Error())
		return
	}
	if len(payments) == 0 {
		return
	}
	log.Printf("[reconcile] Found %d completed payments without orders\n", len(payments))
	for _, payment := range payments {
		err := gdb.Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.
				Model(&models.Product{}).
				Where("id = ?", payment.ProductID).
				First(&product).
				Error; err != nil {
				return err
			}
			order := models.Order{
				UserID:        payment.UserID,
				ProductID:     payment.ProductID,
				PaymentID:     payment.ID,
				UserName:      metadataString(payment.Metadata, "user_name"),
				UserEmail:     payment.UserEmail,
				UserPhone:     utils.FormatPhone(metadataString(payment.Metadata, "user_phone")),
				ProductTitle:  product.Title,
				ProductPrice:  product.Price,
				Date:          metadataString(payment.Metadata, "date"),
				Time:          metadataString(payment.Metadata, "time"),
				Address:       metadataString(payment.Metadata, "address"),
				OrderStatus:   types.ORDER_PENDING,
				Currency:      payment.Currency,
				PaidAmount:    payment.Amount,
				PaymentMethod: payment.PaymentMethod,
				PaymentStatus: string(payment.Status),
				Note:          metadataString(payment.Metadata, "note"),
			}
			return tx.Create(&order).Error
		})
		if err != nil {
			log.Printf("[reconcile] Could not create order for payment %s: %s\n", payment.ID.String(), err.Error())
			continue
		}
		log.Printf("[reconcile] Created order for payment %s\n", payment.ID.String())
	}
}
