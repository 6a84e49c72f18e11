package main

import (
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"

	awslib "pbs/src/lib/aws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20 // 10 MiB

func mediaAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/media/upload", func(ctx *gin.Context) {
		file, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}
		if file.Size > maxUploadSize {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 10MB limit"})
			return
		}
		ext := strings.ToLower(path.Ext(file.Filename))
		contentType := file.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are allowed"})
			return
		}
		src, err := file.Open()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
			return
		}
		defer src.Close()
		key := fmt.Sprintf("media/%s%s", uuid.NewString(), ext)
		url, err := awslib.S3UploadMedia(key, src, contentType)
		if err != nil {
			log.Printf("Could not upload media: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"url": *url}})
	})
	return g
}
