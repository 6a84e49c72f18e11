package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"time"

	"pbs/src/boot"
	"pbs/src/config"
	"pbs/src/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

const (
	apiPrefix string = "/api/v1"
)

// bookabledate rejects session dates in the past. Advisory only: the
// checkout endpoint does not re-check the date after the charge.
var bookableDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	day, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	today := time.Now().Truncate(24 * time.Hour)
	return !day.Before(today)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	productPublicRoutes(apiv1)
	portfolioPublicRoutes(apiv1)
	carouselPublicRoutes(apiv1)
	bookingPublicRoutes(apiv1)
	return apiv1
}

func main() {
	apiEnv := os.Getenv("API_ENV")

	boot.InitDb()
	boot.InitScheduler()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
	}

	router = maintenanceModeMiddleware(router)

	publicRoutes(router)

	authRoutes(router)

	paymentRoutes(router)

	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = userHandlers(authorized)
		authorized = orderHandlers(authorized)

		admin := authorized.Group("")
		admin.Use(middlewares.AdminRequired)
		{
			admin = productAdminHandlers(admin)
			admin = portfolioAdminHandlers(admin)
			admin = carouselAdminHandlers(admin)
			admin = bookingAdminHandlers(admin)
			admin = orderAdminHandlers(admin)
			admin = userAdminHandlers(admin)
			admin = mediaAdminHandlers(admin)
		}
	}

	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
