package common

import (
	"log"
	"os"

	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/lib/mailer"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"

	"gorm.io/gorm"
)

// CreateBooking validates the referenced product, stores the inquiry with
// status pending and fires the confirmation email. Returns
// gorm.ErrRecordNotFound when product_id points nowhere.
func CreateBooking(params *types.CreateBookingRequestBody) (uint, error) {
	db := db.GetDb()
	booking := models.Booking{
		Name:        params.Name,
		Email:       params.Email,
		Date:        params.Date,
		Time:        params.Time,
		ProductID:   params.ProductID,
		SessionName: params.SessionName,
		HeardFrom:   params.HeardFrom,
		Message:     params.Message,
		Status:      types.BOOKING_PENDING,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if params.ProductID != nil {
			var product models.Product
			if err := tx.
				Model(&models.Product{}).
				Where("id = ?", *params.ProductID).
				First(&product).
				Error; err != nil {
				return err
			}
			if booking.SessionName == "" {
				booking.SessionName = product.Title
			}
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	go func() {
		input := &lib.SendMailInput{
			From:     os.Getenv("MAIL_FROM"),
			FromName: os.Getenv("MAIL_FROM_NAME"),
			To:       []string{booking.Email},
			Subject:  "We received your booking inquiry",
			Body:     utils.BookingConfirmationEmailBody(booking.Name, booking.Date, booking.Time, booking.SessionName),
			Html:     true,
		}
		if err := mailer.NewMailerMessage(input); err != nil {
			log.Printf("[MAILER] error sending booking confirmation to %s: %s\n", booking.Email, err.Error())
		}
	}()

	return booking.ID, nil
}
