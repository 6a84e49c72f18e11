package main

import (
	"errors"
	"log"
	"net/http"

	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bookingPublicRoutes(apiv1 *gin.RouterGroup) *gin.RouterGroup {
	// inquiry intake stays public; management requires auth
	apiv1.POST("/bookings", func(ctx *gin.Context) {
		var body types.CreateBookingRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := common.CreateBooking(&body)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			log.Printf("Could not create booking: %s\n", err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id, "status": types.BOOKING_PENDING}})
	})
	return apiv1
}

func bookingAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			db := db.GetDb()
			var bookings []models.Booking
			if err := db.
				Model(&models.Booking{}).
				Preload("Product").
				Order("created_at desc").
				Find(&bookings).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID}).
				Preload("Product").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PUT("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var booking models.Booking
				if err := tx.
					Model(&models.Booking{}).
					Where("id = ?", params.ID).
					First(&booking).
					Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Booking{}).
					Where("id = ?", params.ID).
					Update("status", body.Status).
					Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
					return
				}
				log.Printf("Could not update booking %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			result := db.Delete(&models.Booking{}, params.ID)
			if result.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			if result.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
