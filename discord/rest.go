package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultAPIBase = "https://discord.com/api/v10"

// Commands returns the command metadata registered for every guild.
func Commands() []ApplicationCommand {
	return []ApplicationCommand{
		{Name: CommandSignRoll, Description: "Roll enoa sign"},
		{Name: CommandSignCurrent, Description: "Get current enoa sign for this guild"},
		{Name: CommandSignMyPower, Description: "Show my current shaman power"},
	}
}

// RestClient talks to the Discord REST API on behalf of the bot. All
// calls share a client-side token bucket so bursts of outbound
// requests stay under the platform's global rate limit; there is no
// retry policy, errors surface to the caller.
type RestClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	appID      string
	limiter    *rate.Limiter
	log        *zap.SugaredLogger
}

// NewRestClient creates a client authenticated as the bot.
func NewRestClient(token, appID string, log *zap.SugaredLogger) *RestClient {
	return &RestClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultAPIBase,
		token:      token,
		appID:      appID,
		limiter:    rate.NewLimiter(rate.Limit(45), 5),
		log:        log,
	}
}

func (c *RestClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: discord replied %d: %s", method, path, resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// CurrentGuilds lists the guilds the bot is currently a member of.
func (c *RestClient) CurrentGuilds(ctx context.Context) ([]Guild, error) {
	var guilds []Guild
	if err := c.do(ctx, http.MethodGet, "/users/@me/guilds", nil, &guilds); err != nil {
		return nil, fmt.Errorf("list bot guilds: %w", err)
	}
	return guilds, nil
}

// OverwriteGuildCommands replaces the guild's command set with ours.
func (c *RestClient) OverwriteGuildCommands(ctx context.Context, guildID string, commands []ApplicationCommand) error {
	path := fmt.Sprintf("/applications/%s/guilds/%s/commands", c.appID, guildID)
	if err := c.do(ctx, http.MethodPut, path, commands, nil); err != nil {
		return fmt.Errorf("register commands in guild %s: %w", guildID, err)
	}
	return nil
}

// RegisterCommandsForAllGuilds performs the one-time command
// registration for every guild the bot is in, typically on the
// gateway "ready" event.
func (c *RestClient) RegisterCommandsForAllGuilds(ctx context.Context) error {
	guilds, err := c.CurrentGuilds(ctx)
	if err != nil {
		return err
	}
	for _, guild := range guilds {
		c.log.Infow("registering commands", "guild_id", guild.ID)
		if err := c.OverwriteGuildCommands(ctx, guild.ID, Commands()); err != nil {
			return err
		}
	}
	c.log.Infow("commands registered", "guilds", len(guilds))
	return nil
}

// CreateInteractionResponse delivers a response for an interaction
// received over the gateway transport.
func (c *RestClient) CreateInteractionResponse(ctx context.Context, interactionID, interactionToken string, resp *InteractionResponse) error {
	path := fmt.Sprintf("/interactions/%s/%s/callback", interactionID, interactionToken)
	return c.do(ctx, http.MethodPost, path, resp, nil)
}

type messageEdit struct {
	Content    string      `json:"content"`
	Components []Component `json:"components"`
}

// DisableInfluenceButton rewrites the sign message with its button
// disabled, keeping the content intact.
func (c *RestClient) DisableInfluenceButton(ctx context.Context, msg *Message) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", msg.ChannelID, msg.ID)
	edit := messageEdit{
		Content:    msg.Content,
		Components: ButtonRow(InfluenceButton(true)),
	}
	return c.do(ctx, http.MethodPatch, path, edit, nil)
}
