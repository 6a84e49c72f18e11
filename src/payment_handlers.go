package main

import (
	"errors"
	"log"
	"net/http"

	"pbs/src/common"
	"pbs/src/middlewares"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func paymentRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	// guests can check out; a valid token just pins the order to the account
	apiv1.POST("/payments", middlewares.OptionalAuthMiddleware, func(ctx *gin.Context) {
		var body types.CreatePaymentRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var userID *uint
		if id := ctx.GetUint("id"); id > 0 {
			userID = &id
		}
		order, err := common.ProcessPayment(ctx.Request.Context(), userID, &body)
		if err != nil {
			var ce *common.CheckoutError
			if errors.As(err, &ce) {
				log.Printf("Checkout failed at step %s: %s\n", ce.Step, ce.Err.Error())
				switch ce.Step {
				case common.StepProduct:
					if errors.Is(ce.Err, gorm.ErrRecordNotFound) {
						ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found", "step": ce.Step})
						return
					}
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request", "step": ce.Step})
				case common.StepCharge:
					ctx.JSON(http.StatusPaymentRequired, gin.H{"error": "payment was not completed", "step": ce.Step})
				default:
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request", "step": ce.Step})
				}
				return
			}
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"data": order})
	})
	return apiv1
}
