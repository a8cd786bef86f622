package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ArtoLord/enoa-sign-roller/config"
	"github.com/ArtoLord/enoa-sign-roller/discord"
	"github.com/ArtoLord/enoa-sign-roller/utils"
)

// OAuthController implements the bot-install flow: a redirect to the
// Discord authorize page carrying a signed state token, and a callback
// that validates the state, exchanges the code and registers the
// bot's commands for the guild it was just added to.
type OAuthController struct {
	oauth *oauth2.Config
	rest  *discord.RestClient
	log   *zap.SugaredLogger
}

// NewOAuthController builds the controller from application config.
func NewOAuthController(cfg config.AppConfig, rest *discord.RestClient, log *zap.SugaredLogger) *OAuthController {
	return &OAuthController{
		oauth: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"bot", "applications.commands"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
		rest: rest,
		log:  log,
	}
}

// Redirect sends the installer to the Discord authorize page.
func (c *OAuthController) Redirect(ctx *gin.Context) {
	state, err := utils.GenerateStateToken()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "cannot issue state token")
		return
	}
	ctx.Redirect(http.StatusFound, c.oauth.AuthCodeURL(state))
}

// Callback completes the install: validates state, exchanges the code
// and registers commands for the installed guild.
func (c *OAuthController) Callback(ctx *gin.Context) {
	state := ctx.Query("state")
	if state == "" || !utils.ValidateStateToken(state) {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid or expired state")
		return
	}

	if code := ctx.Query("code"); code != "" {
		if _, err := c.oauth.Exchange(ctx.Request.Context(), code); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40002, "failed to exchange code")
			return
		}
	}

	guildID := ctx.Query("guild_id")
	if guildID != "" {
		c.log.Infow("bot installed", "guild_id", guildID)
		if err := c.rest.OverwriteGuildCommands(ctx.Request.Context(), guildID, discord.Commands()); err != nil {
			c.log.Errorw("cannot register commands after install",
				"guild_id", guildID, "error", err)
			utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to register commands")
			return
		}
	}

	ctx.String(http.StatusOK, "Bot is added to server!")
}
