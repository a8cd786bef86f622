// Package controllers holds the gin HTTP controllers of the webhook
// server.
package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ArtoLord/enoa-sign-roller/discord"
	"github.com/ArtoLord/enoa-sign-roller/middleware"
	"github.com/ArtoLord/enoa-sign-roller/utils"
)

// InteractionsController is the stateless webhook front end: requests
// arrive already signature-verified, get decoded, routed, and answered
// with exactly one response object.
type InteractionsController struct {
	router *discord.Router
	log    *zap.SugaredLogger
}

// NewInteractionsController wires the controller to the shared router.
func NewInteractionsController(router *discord.Router, log *zap.SugaredLogger) *InteractionsController {
	return &InteractionsController{router: router, log: log}
}

// Handle processes one verified webhook request. An unparseable body
// cannot yield a response the platform would accept, so it falls into
// the same logged 500 path as any other internal failure.
func (c *InteractionsController) Handle(ctx *gin.Context) {
	body, ok := middleware.RawBody(ctx)
	if !ok {
		c.log.Error("interaction request reached handler without verified body")
		ctx.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	var ic discord.Interaction
	if err := json.Unmarshal(body, &ic); err != nil {
		c.log.Errorw("cannot parse interaction envelope", "error", err)
		ctx.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	// Liveness check from the platform: answer without routing.
	if ic.Type == discord.InteractionTypePing {
		ctx.JSON(http.StatusOK, discord.Pong())
		return
	}

	// The platform may redeliver an interaction; suppress duplicates
	// when redis is configured, fail open when it is not.
	if utils.SeenInteraction(ctx.Request.Context(), ic.ID) {
		c.log.Infow("suppressing redelivered interaction", "interaction_id", ic.ID)
		ctx.Status(http.StatusOK)
		return
	}

	resp := c.router.Handle(ctx.Request.Context(), &ic)
	if resp == nil {
		ctx.Status(http.StatusOK)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
