// Package gateway is the long-lived connection front end: it keeps a
// websocket session with the Discord gateway and feeds received
// interactions into the same router the webhook transport uses.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ArtoLord/enoa-sign-roller/discord"
)

const defaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Gateway opcodes used by this client.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// intents: GUILDS | GUILD_MEMBERS | GUILD_MESSAGES.
const identifyIntents = 1<<0 | 1<<1 | 1<<9

type payload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  int64           `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// Client maintains the gateway session. Responses to interactions
// received here are delivered through the REST interaction callback.
type Client struct {
	url    string
	token  string
	router *discord.Router
	rest   *discord.RestClient
	log    *zap.SugaredLogger

	mu   sync.Mutex // guards writes to conn
	conn *websocket.Conn
	seq  int64
}

// NewClient builds a gateway client around the shared router.
func NewClient(token string, router *discord.Router, rest *discord.RestClient, log *zap.SugaredLogger) *Client {
	return &Client{
		url:    defaultGatewayURL,
		token:  token,
		router: router,
		rest:   rest,
		log:    log,
	}
}

// Run keeps the session alive until the context is canceled,
// reconnecting with a flat delay after any session failure.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.serve(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warnw("gateway session ended, reconnecting", "error", err)

		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) serve(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("gateway dial: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer conn.Close()

	var hello payload
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected hello, got op %d", hello.Op)
	}
	var helloD helloData
	if err := json.Unmarshal(hello.D, &helloD); err != nil {
		return fmt.Errorf("parse hello: %w", err)
	}

	if err := c.identify(); err != nil {
		return err
	}

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go c.heartbeatLoop(heartbeatCtx, time.Duration(helloD.HeartbeatInterval)*time.Millisecond)

	for {
		var msg payload
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("gateway read: %w", err)
		}
		if msg.S != 0 {
			c.mu.Lock()
			c.seq = msg.S
			c.mu.Unlock()
		}

		switch msg.Op {
		case opDispatch:
			c.handleDispatch(ctx, msg)
		case opHeartbeat:
			c.sendHeartbeat()
		case opReconnect, opInvalidSession:
			return fmt.Errorf("gateway requested reconnect (op %d)", msg.Op)
		case opHeartbeatACK:
			// nothing to do
		}
	}
}

func (c *Client) identify() error {
	return c.write(payload{Op: opIdentify, D: mustMarshal(identifyData{
		Token:   c.token,
		Intents: identifyIntents,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "enoa-sign-roller",
			Device:  "enoa-sign-roller",
		},
	})})
}

func (c *Client) heartbeatLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sendHeartbeat()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) sendHeartbeat() {
	c.mu.Lock()
	seq := c.seq
	c.mu.Unlock()
	if err := c.write(payload{Op: opHeartbeat, D: mustMarshal(seq)}); err != nil {
		c.log.Warnw("heartbeat failed", "error", err)
	}
}

func (c *Client) write(p payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("gateway not connected")
	}
	return c.conn.WriteJSON(p)
}

func (c *Client) handleDispatch(ctx context.Context, msg payload) {
	switch msg.T {
	case "READY":
		c.log.Infow("gateway ready")
		go func() {
			if err := c.rest.RegisterCommandsForAllGuilds(ctx); err != nil {
				c.log.Errorw("cannot register guild commands", "error", err)
			}
		}()

	case "INTERACTION_CREATE":
		var ic discord.Interaction
		if err := json.Unmarshal(msg.D, &ic); err != nil {
			c.log.Errorw("cannot parse interaction", "error", err)
			return
		}
		// Each interaction runs on its own goroutine; ordering between
		// concurrent events is intentionally not guaranteed.
		go c.handleInteraction(ctx, &ic)
	}
}

func (c *Client) handleInteraction(ctx context.Context, ic *discord.Interaction) {
	resp := c.router.Handle(ctx, ic)
	if resp == nil {
		return
	}
	if err := c.rest.CreateInteractionResponse(ctx, ic.ID, ic.Token, resp); err != nil {
		c.log.Errorw("cannot send interaction response",
			"interaction_id", ic.ID, "error", err)
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
