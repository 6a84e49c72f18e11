package main

import (
	"net/http"

	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
)

func portfolioPublicRoutes(apiv1 *gin.RouterGroup) *gin.RouterGroup {
	apiv1.GET("/portfolio", func(ctx *gin.Context) {
		db := db.GetDb()
		var items []models.PortfolioItem
		query := db.Model(&models.PortfolioItem{}).Order("created_at desc")
		if category := ctx.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		if err := query.Find(&items).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": items, "count": len(items)})
	})
	return apiv1
}

func portfolioAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/portfolio", func(ctx *gin.Context) {
			var body types.CreatePortfolioItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			item := models.PortfolioItem{
				Title:       body.Title,
				Category:    body.Category,
				ImageURL:    body.ImageURL,
				Description: body.Description,
			}
			db := db.GetDb()
			if err := db.Create(&item).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": item})
		}).
		PUT("/portfolio/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreatePortfolioItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			result := db.
				Model(&models.PortfolioItem{}).
				Where("id = ?", params.ID).
				Updates(map[string]any{
					"title":       body.Title,
					"category":    body.Category,
					"image_url":   body.ImageURL,
					"description": body.Description,
				})
			if result.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			if result.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "portfolio item not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/portfolio/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			result := db.Delete(&models.PortfolioItem{}, params.ID)
			if result.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			if result.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "portfolio item not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
