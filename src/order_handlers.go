package main

import (
	"errors"
	"log"
	"net/http"

	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/orders", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			db := db.GetDb()
			var orders []models.Order
			query := db.Model(&models.Order{}).Order("created_at desc")
			if role != types.ROLE_ADMIN {
				query = query.Where("user_id = ?", userId)
			}
			if err := query.Find(&orders).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			db := db.GetDb()
			var order models.Order
			if err := db.
				Model(&models.Order{}).
				Where(&models.Order{ID: params.ID}).
				First(&order).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			if role != types.ROLE_ADMIN && (order.UserID == nil || *order.UserID != userId) {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "not your order"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		})
	return g
}

func orderAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		PUT("/orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var order models.Order
				if err := tx.
					Model(&models.Order{}).
					Where("id = ?", params.ID).
					First(&order).
					Error; err != nil {
					return err
				}
				updates := map[string]any{}
				if body.OrderStatus != nil {
					updates["order_status"] = *body.OrderStatus
				}
				if body.PaymentStatus != nil {
					updates["payment_status"] = *body.PaymentStatus
				}
				if body.Note != nil {
					updates["note"] = *body.Note
				}
				if len(updates) == 0 {
					return nil
				}
				return tx.
					Model(&models.Order{}).
					Where("id = ?", params.ID).
					Updates(updates).
					Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
					return
				}
				log.Printf("Could not update order %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			result := db.Delete(&models.Order{}, params.ID)
			if result.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			if result.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
