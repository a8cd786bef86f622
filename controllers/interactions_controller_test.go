package controllers

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	mrand "math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ArtoLord/enoa-sign-roller/discord"
	"github.com/ArtoLord/enoa-sign-roller/middleware"
	"github.com/ArtoLord/enoa-sign-roller/signs"
	"github.com/ArtoLord/enoa-sign-roller/store"
)

type webhookFixture struct {
	engine  *gin.Engine
	store   *store.MemoryStore
	private ed25519.PrivateKey
}

// newWebhookFixture builds the same chain main assembles for the
// webhook transport: signature middleware in front of the controller,
// with a fresh in-memory store behind the router.
func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// The dedup guard loads configuration lazily; give it enough to
	// boot without a real bot token.
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("DISCORD_PUBLIC_KEY", "ignored-by-tests")

	public, private, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var defs []signs.Definition
	for a := 1; a <= 4; a++ {
		for b := a; b <= 4; b++ {
			for c := b; c <= 4; c++ {
				for d := c; d <= 4; d++ {
					id := fmt.Sprintf("%d%d%d%d", a, b, c, d)
					defs = append(defs, signs.Definition{
						ID: id, Name: "Знамение " + id, Difficulty: 10,
						Description: "d", Effect: "e",
						SuccessEffect: "s", FailureEffect: "f",
					})
				}
			}
		}
	}
	catalog := signs.NewCatalog(defs)

	st := store.NewMemoryStore()
	log := zap.NewNop().Sugar()
	router := discord.NewRouter(st, signs.NewEngineWithSource(catalog, mrand.NewSource(7)), catalog, nil, log)
	controller := NewInteractionsController(router, log)

	engine := gin.New()
	engine.POST("/interactions", middleware.VerifySignature(public), controller.Handle)

	return &webhookFixture{engine: engine, store: st, private: private}
}

// post sends body with a signature over sign (the bytes actually
// signed) so a test can tamper after signing.
func (f *webhookFixture) post(sign, body []byte) *httptest.ResponseRecorder {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	signed := append([]byte(timestamp), sign...)
	signature := hex.EncodeToString(ed25519.Sign(f.private, signed))

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	req.Header.Set(middleware.HeaderSignature, signature)
	req.Header.Set(middleware.HeaderTimestamp, timestamp)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func rollBody(interactionID, guildID, userID string) []byte {
	body, _ := json.Marshal(discord.Interaction{
		ID:      interactionID,
		Type:    discord.InteractionTypeApplicationCommand,
		Data:    &discord.InteractionData{Name: discord.CommandSignRoll},
		GuildID: guildID,
		Member:  &discord.Member{User: &discord.User{ID: userID}},
	})
	return body
}

func TestMissingSignatureHeaders(t *testing.T) {
	f := newWebhookFixture(t)
	body := rollBody("1", "42", "7")

	cases := []struct {
		name      string
		signature string
		timestamp string
	}{
		{"both missing", "", ""},
		{"timestamp missing", "aa", ""},
		{"signature missing", "", "1700000000"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
		if tc.signature != "" {
			req.Header.Set(middleware.HeaderSignature, tc.signature)
		}
		if tc.timestamp != "" {
			req.Header.Set(middleware.HeaderTimestamp, tc.timestamp)
		}
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
	}
}

func TestMalformedSignatureRejected(t *testing.T) {
	f := newWebhookFixture(t)
	body := rollBody("1", "42", "7")

	for _, sig := range []string{"not-hex", "abcd"} {
		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
		req.Header.Set(middleware.HeaderSignature, sig)
		req.Header.Set(middleware.HeaderTimestamp, "1700000000")
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, sig)
	}
}

func TestWrongKeyRejected(t *testing.T) {
	f := newWebhookFixture(t)
	_, otherKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	f.private = otherKey

	body := rollBody("1", "42", "7")
	w := f.post(body, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTamperedBodyRejected(t *testing.T) {
	f := newWebhookFixture(t)

	signedOver := rollBody("1", "42", "7")
	tampered := rollBody("1", "42", "666")

	w := f.post(signedOver, tampered)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The request never reached the router: no sign was created.
	sign, err := f.store.GetGuildSign(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, sign)
}

func TestPingAnsweredWithPong(t *testing.T) {
	f := newWebhookFixture(t)

	body, err := json.Marshal(discord.Interaction{ID: "1", Type: discord.InteractionTypePing})
	require.NoError(t, err)

	w := f.post(body, body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp discord.InteractionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, discord.ResponseTypePong, resp.Type)
	assert.Nil(t, resp.Data)
}

func TestSignedCommandRoundTrip(t *testing.T) {
	f := newWebhookFixture(t)

	body := rollBody("1", "42", "7")
	w := f.post(body, body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp discord.InteractionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, discord.ResponseTypeChannelMessage, resp.Type)
	require.NotNil(t, resp.Data)
	assert.NotEmpty(t, resp.Data.Content)

	sign, err := f.store.GetGuildSign(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, sign)
	assert.Equal(t, "7", sign.CreatedBy)
}

func TestUnparseableBodyIsServerError(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte("{not json")
	w := f.post(body, body)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
