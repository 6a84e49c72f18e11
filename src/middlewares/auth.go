package middlewares

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"pbs/src/db"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func requestToken(ctx *gin.Context) string {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.Split(bearerToken, " ")[1]
	}
	// session cookie set at login mirrors the bearer token
	if cookie, err := ctx.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

func resolveUser(reqToken string) (*models.User, error) {
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, err
	}
	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{ID: uint(uid)}).
		First(&user).
		Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func AuthMiddleware(ctx *gin.Context) {
	reqToken := requestToken(ctx)
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	user, err := resolveUser(reqToken)
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("email", user.Email)
	ctx.Set("id", user.ID)
	ctx.Set("role", user.Role)
}

// OptionalAuthMiddleware resolves the acting user when a token is present
// but lets anonymous requests through. Checkout uses it for guest orders.
func OptionalAuthMiddleware(ctx *gin.Context) {
	reqToken := requestToken(ctx)
	if reqToken == "" {
		return
	}
	user, err := resolveUser(reqToken)
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		return
	}
	ctx.Set("email", user.Email)
	ctx.Set("id", user.ID)
	ctx.Set("role", user.Role)
}

func AdminRequired(ctx *gin.Context) {
	role := ctx.GetString("role")
	if role != types.ROLE_ADMIN {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
}
