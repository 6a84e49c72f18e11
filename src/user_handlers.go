package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"pbs/src/common"
	"pbs/src/config"
	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/lib/mailer"
	"pbs/src/models"
	"pbs/src/types"
	"pbs/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

func signAuthToken(user *models.User) (string, error) {
	claims := &types.Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.AUTH_COOKIE_MAX_AGE * time.Second)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func authRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	auth := apiv1.Group("/auth")
	auth.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			hashed, err := utils.HashPassword(body.Password)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			user := models.User{
				Name:     body.Name,
				Email:    body.Email,
				Password: hashed,
				Phone:    utils.FormatPhone(body.Phone),
				Role:     types.ROLE_USER,
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.
					Model(&models.User{}).
					Where("email = ?", body.Email).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return errEmailTaken
				}
				return tx.Create(&user).Error
			})
			if err != nil {
				if errors.Is(err, errEmailTaken) {
					ctx.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
					return
				}
				log.Printf("Could not register user: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": user})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.
				Model(&models.User{}).
				Where("email = ?", body.Email).
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
				return
			}
			if !utils.CheckPassword(user.Password, body.Password) {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
				return
			}
			token, err := signAuthToken(&user)
			if err != nil {
				log.Printf("Could not sign token: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.SetCookie("auth_token", token, config.AUTH_COOKIE_MAX_AGE, "/", "", false, true)
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token, "user": user}})
		}).
		POST("/logout", func(ctx *gin.Context) {
			ctx.SetCookie("auth_token", "", -1, "/", "", false, true)
			ctx.Status(http.StatusNoContent)
		}).
		POST("/forgot-password", func(ctx *gin.Context) {
			var body types.ForgotPasswordRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.
				Model(&models.User{}).
				Where("email = ?", body.Email).
				First(&user).
				Error; err != nil {
				// do not reveal whether the address is registered
				ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
				return
			}
			token, err := utils.GenerateResetToken()
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			expiry := time.Now().Add(config.RESET_TOKEN_TTL * time.Minute)
			if err := db.
				Model(&models.User{}).
				Where("id = ?", user.ID).
				Updates(map[string]any{"reset_token": token, "reset_token_expiry": expiry}).
				Error; err != nil {
				log.Printf("Could not store reset token: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			go func() {
				resetURL := fmt.Sprintf("%s/reset-password?token=%s", os.Getenv("FRONTEND_URL"), token)
				input := &lib.SendMailInput{
					From:     os.Getenv("MAIL_FROM"),
					FromName: os.Getenv("MAIL_FROM_NAME"),
					To:       []string{user.Email},
					Subject:  "Reset your password",
					Body:     utils.PasswordResetEmailBody(resetURL),
					Html:     true,
				}
				if err := mailer.NewMailerMessage(input); err != nil {
					log.Printf("[MAILER] error sending reset email to %s: %s\n", user.Email, err.Error())
				}
			}()
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
		}).
		POST("/verify-reset-token", func(ctx *gin.Context) {
			var body types.VerifyResetTokenRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if _, err := userForResetToken(body.Token); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired token"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"valid": true}})
		}).
		POST("/reset-password", func(ctx *gin.Context) {
			var body types.ResetPasswordRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user, err := userForResetToken(body.Token)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired token"})
				return
			}
			hashed, err := utils.HashPassword(body.Password)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			db := db.GetDb()
			// the token is single use: it clears together with the password write
			err = db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.User{}).
					Where("id = ?", user.ID).
					Updates(map[string]any{
						"password":           hashed,
						"reset_token":        nil,
						"reset_token_expiry": nil,
					}).
					Error
			})
			if err != nil {
				log.Printf("Could not reset password for user %d: %s\n", user.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"reset": true}})
		})
	return apiv1
}

var errEmailTaken = errors.New("email already registered")
var errTokenExpired = errors.New("reset token expired")

func userForResetToken(token string) (*models.User, error) {
	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where("reset_token = ?", token).
		First(&user).
		Error; err != nil {
		return nil, err
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		// expired tokens clear on first sight
		if err := db.
			Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{"reset_token": nil, "reset_token_expiry": nil}).
			Error; err != nil {
			log.Printf("Could not clear expired reset token: %s\n", err.Error())
		}
		return nil, errTokenExpired
	}
	return &user, nil
}

func userHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/auth/verify", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"id":    userId,
				"email": ctx.GetString("email"),
				"role":  ctx.GetString("role"),
			}})
		}).
		GET("/users/me", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var user models.User
			if err := db.
				Model(&models.User{}).
				Where(&models.User{ID: userId}).
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		PUT("/users/me", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var body types.UpdateProfileRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Phone != nil {
				updates["phone"] = utils.FormatPhone(*body.Phone)
			}
			if len(updates) == 0 {
				ctx.Status(http.StatusNoContent)
				return
			}
			db := db.GetDb()
			if err := db.
				Model(&models.User{}).
				Where("id = ?", userId).
				Updates(updates).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func userAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/users", func(ctx *gin.Context) {
			db := db.GetDb()
			var users []models.User
			if err := db.
				Model(&models.User{}).
				Order("created_at desc").
				Find(&users).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": users, "count": len(users)})
		}).
		PUT("/users/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var user models.User
				if err := tx.
					Model(&models.User{}).
					Where("id = ?", params.ID).
					First(&user).
					Error; err != nil {
					return err
				}
				if body.Role != nil && *body.Role != types.ROLE_ADMIN {
					if err := common.GuardLastAdmin(tx, &user); err != nil {
						return err
					}
				}
				updates := map[string]any{}
				if body.Name != nil {
					updates["name"] = *body.Name
				}
				if body.Phone != nil {
					updates["phone"] = utils.FormatPhone(*body.Phone)
				}
				if body.Role != nil {
					updates["role"] = *body.Role
				}
				if len(updates) == 0 {
					return nil
				}
				return tx.
					Model(&models.User{}).
					Where("id = ?", params.ID).
					Updates(updates).
					Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
					return
				}
				if errors.Is(err, common.ErrLastAdmin) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "cannot demote the last admin account"})
					return
				}
				log.Printf("Could not update user %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/users/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var user models.User
				if err := tx.
					Model(&models.User{}).
					Where("id = ?", params.ID).
					First(&user).
					Error; err != nil {
					return err
				}
				if err := common.GuardLastAdmin(tx, &user); err != nil {
					return err
				}
				return tx.Delete(&models.User{}, params.ID).Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
					return
				}
				if errors.Is(err, common.ErrLastAdmin) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the last admin account"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
