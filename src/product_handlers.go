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

func productPublicRoutes(apiv1 *gin.RouterGroup) *gin.RouterGroup {
	apiv1.
		GET("/products", func(ctx *gin.Context) {
			var products []models.Product
			if common.CacheGetJSON(common.ProductsCacheKey, &products) {
				ctx.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
				return
			}
			db := db.GetDb()
			if err := db.
				Model(&models.Product{}).
				Order("price asc").
				Find(&products).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			common.CacheSetJSON(common.ProductsCacheKey, products)
			ctx.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
		}).
		GET("/products/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var product models.Product
			if err := db.
				Model(&models.Product{}).
				Where(&models.Product{ID: params.ID}).
				First(&product).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": product})
		})
	return apiv1
}

func productAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/products", func(ctx *gin.Context) {
			var body types.CreateProductRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			product := models.Product{
				Title:       body.Title,
				Description: body.Description,
				Price:       body.Price,
				Duration:    body.Duration,
				PhotoCount:  body.PhotoCount,
				ImageURL:    body.ImageURL,
				CTAText:     body.CTAText,
			}
			db := db.GetDb()
			if err := db.Create(&product).Error; err != nil {
				log.Printf("Could not create product: %s\n", err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": "a product with this title already exists"})
				return
			}
			common.CacheInvalidate(common.ProductsCacheKey)
			ctx.JSON(http.StatusCreated, gin.H{"data": product})
		}).
		PUT("/products/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateProductRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var product models.Product
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.Product{}).
					Where("id = ?", params.ID).
					First(&product).
					Error; err != nil {
					return err
				}
				updates := map[string]any{}
				if body.Title != nil {
					updates["title"] = *body.Title
				}
				if body.Description != nil {
					updates["description"] = *body.Description
				}
				if body.Price != nil {
					updates["price"] = *body.Price
				}
				if body.Duration != nil {
					updates["duration"] = *body.Duration
				}
				if body.PhotoCount != nil {
					updates["photo_count"] = *body.PhotoCount
				}
				if body.ImageURL != nil {
					updates["image_url"] = *body.ImageURL
				}
				if body.CTAText != nil {
					updates["cta_text"] = *body.CTAText
				}
				if len(updates) == 0 {
					return nil
				}
				return tx.
					Model(&models.Product{}).
					Where("id = ?", params.ID).
					Updates(updates).
					Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			common.CacheInvalidate(common.ProductsCacheKey)
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/products/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var product models.Product
				if err := tx.
					Model(&models.Product{}).
					Where("id = ?", params.ID).
					First(&product).
					Error; err != nil {
					return err
				}
				var refs int64
				if err := tx.
					Model(&models.Booking{}).
					Where("product_id = ?", params.ID).
					Count(&refs).
					Error; err != nil {
					return err
				}
				if refs > 0 {
					return errProductReferenced
				}
				return tx.Delete(&models.Product{}, params.ID).Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
					return
				}
				if errors.Is(err, errProductReferenced) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "product has bookings and cannot be deleted"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			common.CacheInvalidate(common.ProductsCacheKey)
			ctx.Status(http.StatusNoContent)
		})
	return g
}

var errProductReferenced = errors.New("product is referenced by bookings")
