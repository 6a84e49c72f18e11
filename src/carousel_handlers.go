package main

import (
	"fmt"
	"log"
	"net/http"

	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func carouselPublicRoutes(apiv1 *gin.RouterGroup) *gin.RouterGroup {
	apiv1.GET("/carousel", func(ctx *gin.Context) {
		var images []models.CarouselImage
		if common.CacheGetJSON(common.CarouselCacheKey, &images) {
			ctx.JSON(http.StatusOK, gin.H{"data": images, "count": len(images)})
			return
		}
		db := db.GetDb()
		if err := db.
			Model(&models.CarouselImage{}).
			Order("display_order asc").
			Find(&images).
			Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
			return
		}
		common.CacheSetJSON(common.CarouselCacheKey, images)
		ctx.JSON(http.StatusOK, gin.H{"data": images, "count": len(images)})
	})
	return apiv1
}

func carouselAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/carousel", func(ctx *gin.Context) {
			var body types.CreateCarouselImageRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			image := models.CarouselImage{
				Title:    body.Title,
				ImageURL: body.ImageURL,
			}
			err := db.Transaction(func(tx *gorm.DB) error {
				// new slides go to the end of the banner
				var count int64
				if err := tx.Model(&models.CarouselImage{}).Count(&count).Error; err != nil {
					return err
				}
				image.DisplayOrder = uint(count)
				return tx.Create(&image).Error
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			common.CacheInvalidate(common.CarouselCacheKey)
			ctx.JSON(http.StatusCreated, gin.H{"data": image})
		}).
		PUT("/carousel/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreateCarouselImageRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			result := db.
				Model(&models.CarouselImage{}).
				Where("id = ?", params.ID).
				Updates(map[string]any{"title": body.Title, "image_url": body.ImageURL})
			if result.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			if result.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "carousel image not found"})
				return
			}
			common.CacheInvalidate(common.CarouselCacheKey)
			ctx.Status(http.StatusNoContent)
		}).
		PATCH("/carousel/reorder", func(ctx *gin.Context) {
			var body types.ReorderCarouselRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			// every row updates or none does
			err := db.Transaction(func(tx *gorm.DB) error {
				for index, id := range body.IDs {
					result := tx.
						Model(&models.CarouselImage{}).
						Where("id = ?", id).
						Update("display_order", index)
					if result.Error != nil {
						return result.Error
					}
					if result.RowsAffected == 0 {
						return fmt.Errorf("carousel image [%d] not found", id)
					}
				}
				return nil
			})
			if err != nil {
				log.Printf("Could not reorder carousel: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			common.CacheInvalidate(common.CarouselCacheKey)
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/carousel/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			result := db.Delete(&models.CarouselImage{}, params.ID)
			if result.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			if result.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "carousel image not found"})
				return
			}
			common.CacheInvalidate(common.CarouselCacheKey)
			ctx.Status(http.StatusNoContent)
		})
	return g
}
