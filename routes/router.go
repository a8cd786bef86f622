// Package routes wires the webhook server's routes and middlewares.
package routes

import (
	"crypto/ed25519"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ArtoLord/enoa-sign-roller/config"
	"github.com/ArtoLord/enoa-sign-roller/controllers"
	"github.com/ArtoLord/enoa-sign-roller/discord"
	"github.com/ArtoLord/enoa-sign-roller/middleware"
	"github.com/ArtoLord/enoa-sign-roller/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(publicKey ed25519.PublicKey, router *discord.Router, rest *discord.RestClient) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.Ginzap(utils.Logger))
	r.Use(utils.RecoveryWithZap(utils.Logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", middleware.HeaderSignature, middleware.HeaderTimestamp},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	interactionsController := controllers.NewInteractionsController(router, utils.Sugar)
	oauthController := controllers.NewOAuthController(cfg, rest, utils.Sugar)

	r.POST("/interactions",
		middleware.VerifySignature(publicKey),
		interactionsController.Handle,
	)

	r.GET("/oauth/login", oauthController.Redirect)
	r.GET("/oauth", oauthController.Callback)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
