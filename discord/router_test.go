package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ArtoLord/enoa-sign-roller/models"
	"github.com/ArtoLord/enoa-sign-roller/signs"
	"github.com/ArtoLord/enoa-sign-roller/store"
)

// fullCatalog covers every id four sorted d4 faces can produce, so any
// rolled sign has a definition.
func fullCatalog() *signs.Catalog {
	var defs []signs.Definition
	for a := 1; a <= 4; a++ {
		for b := a; b <= 4; b++ {
			for c := b; c <= 4; c++ {
				for d := c; d <= 4; d++ {
					id := fmt.Sprintf("%d%d%d%d", a, b, c, d)
					defs = append(defs, signs.Definition{
						ID:            id,
						Name:          "Знамение " + id,
						Difficulty:    10,
						Description:   "Описание " + id,
						Effect:        "Эффект " + id,
						SuccessEffect: "Успех " + id,
						FailureEffect: "Провал " + id,
					})
				}
			}
		}
	}
	return signs.NewCatalog(defs)
}

func newTestRouter(st store.Store) *Router {
	catalog := fullCatalog()
	engine := signs.NewEngineWithSource(catalog, rand.NewSource(42))
	return NewRouter(st, engine, catalog, nil, zap.NewNop().Sugar())
}

func commandInteraction(id, name, guildID, userID string) *Interaction {
	return &Interaction{
		ID:      id,
		Type:    InteractionTypeApplicationCommand,
		Data:    &InteractionData{Name: name},
		GuildID: guildID,
		Member:  &Member{User: &User{ID: userID}},
	}
}

func buttonInteraction(id, customID, guildID, userID string) *Interaction {
	return &Interaction{
		ID:      id,
		Type:    InteractionTypeMessageComponent,
		Data:    &InteractionData{CustomID: customID, ComponentType: ComponentTypeButton},
		GuildID: guildID,
		Member:  &Member{User: &User{ID: userID}},
	}
}

func TestUnknownCommandBecomesGenericError(t *testing.T) {
	r := newTestRouter(store.NewMemoryStore())

	resp := r.Handle(context.Background(), commandInteraction("1", "hack_the_bot", "42", "7"))
	require.NotNil(t, resp)
	assert.Equal(t, ResponseTypeChannelMessage, resp.Type)
	assert.Contains(t, resp.Data.Content, msgSomethingWrong)
	assert.NotContains(t, resp.Data.Content, "hack_the_bot", "internal details must not leak")
	assert.Equal(t, MessageFlagEphemeral, resp.Data.Flags)
}

func TestUnknownComponentBecomesGenericError(t *testing.T) {
	r := newTestRouter(store.NewMemoryStore())

	resp := r.Handle(context.Background(), buttonInteraction("1", "no_such_button", "42", "7"))
	require.NotNil(t, resp)
	assert.Contains(t, resp.Data.Content, msgSomethingWrong)
}

func TestCommandOutsideGuildRejected(t *testing.T) {
	r := newTestRouter(store.NewMemoryStore())

	for _, name := range []string{CommandSignRoll, CommandSignCurrent, CommandSignMyPower} {
		ic := commandInteraction("1", name, "", "7")
		ic.Member = nil
		ic.User = &User{ID: "7"}

		resp := r.Handle(context.Background(), ic)
		require.NotNil(t, resp, name)
		assert.Contains(t, resp.Data.Content, msgGuildOnly, name)
	}
}

func TestMyPowerDefaultsForUnseenUser(t *testing.T) {
	r := newTestRouter(store.NewMemoryStore())

	resp := r.Handle(context.Background(), commandInteraction("1", CommandSignMyPower, "42", "7"))
	require.NotNil(t, resp)
	assert.Contains(t, resp.Data.Content, "Твоя сила шамана: 10")
	assert.Equal(t, MessageFlagEphemeral, resp.Data.Flags)
}

func TestCurrentWithoutSign(t *testing.T) {
	r := newTestRouter(store.NewMemoryStore())

	resp := r.Handle(context.Background(), commandInteraction("1", CommandSignCurrent, "42", "7"))
	require.NotNil(t, resp)
	assert.Contains(t, resp.Data.Content, msgNoSignToday)
}

func TestCreatorCannotInfluenceOwnSign(t *testing.T) {
	st := store.NewMemoryStore()
	r := newTestRouter(st)
	ctx := context.Background()

	resp := r.Handle(ctx, commandInteraction("1", CommandSignRoll, "42", "7"))
	require.NotNil(t, resp)

	// No race needed: the sole request is rejected on the fast path.
	resp = r.Handle(ctx, buttonInteraction("2", ComponentChangeSign, "42", "7"))
	require.NotNil(t, resp)
	assert.Contains(t, resp.Data.Content, msgCreatorCannot)

	sign, err := st.GetGuildSign(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, sign)
	assert.Equal(t, models.SignStateCreated, sign.State, "rejected attempt must not resolve the sign")
}

// TestDailySignScenario walks the full day of guild 42: a roll, a
// rejected re-roll, one influence and a rejected second influence.
func TestDailySignScenario(t *testing.T) {
	st := store.NewMemoryStore()
	r := newTestRouter(st)
	ctx := context.Background()

	// User 7 rolls today's sign.
	resp := r.Handle(ctx, commandInteraction("1", CommandSignRoll, "42", "7"))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Data)

	sign, err := st.GetGuildSign(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, sign)
	assert.Regexp(t, "^[1-4]{4}$", sign.SignID)
	assert.Equal(t, "7", sign.CreatedBy)

	// Round-trip the envelope the way the webhook transport would.
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var echoed InteractionResponse
	require.NoError(t, json.Unmarshal(raw, &echoed))

	assert.Contains(t, echoed.Data.Content, "Описание "+sign.SignID)
	assert.Contains(t, echoed.Data.Content, "Успех "+sign.SignID)
	assert.Contains(t, echoed.Data.Content, "Провал "+sign.SignID)

	// The reply carries the influence button.
	require.Len(t, echoed.Data.Components, 1)
	row := echoed.Data.Components[0]
	assert.Equal(t, ComponentTypeActionRow, row.Type)
	require.Len(t, row.Components, 1)
	assert.Equal(t, ComponentChangeSign, row.Components[0].CustomID)
	assert.False(t, row.Components[0].Disabled)

	// User 7 rolls again: rejected, the stored sign is untouched.
	resp = r.Handle(ctx, commandInteraction("2", CommandSignRoll, "42", "7"))
	require.NotNil(t, resp)
	assert.Contains(t, resp.Data.Content, msgAlreadyCreated)

	unchanged, err := st.GetGuildSign(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, sign.SignID, unchanged.SignID)

	// User 9 influences the sign.
	resp = r.Handle(ctx, buttonInteraction("3", ComponentChangeSign, "42", "9"))
	require.NotNil(t, resp)
	assert.Contains(t, resp.Data.Content, "Знамение изменено")
	assert.Contains(t, resp.Data.Content, "<@9>")

	resolved, err := st.GetGuildSign(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.True(t, resolved.State.Resolved())
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "9", *resolved.ResolvedBy)

	// Exactly the branch matching the recorded outcome is rendered.
	if resolved.State == models.SignStateSuccess {
		assert.Contains(t, resp.Data.Content, "Успех "+sign.SignID)
		assert.NotContains(t, resp.Data.Content, "Провал "+sign.SignID)
	} else {
		assert.Contains(t, resp.Data.Content, "Провал "+sign.SignID)
		assert.NotContains(t, resp.Data.Content, "Успех "+sign.SignID)
	}

	// User 9's power moved by at most one unit, consistently with the
	// outcome.
	user, err := st.GetUser(ctx, "9", "42")
	require.NoError(t, err)
	require.NotNil(t, user)
	if resolved.State == models.SignStateSuccess {
		assert.Contains(t, []int{9, 10}, user.Power)
	} else {
		assert.Equal(t, 11, user.Power)
	}

	// A second influence attempt hits the already-resolved rejection.
	resp = r.Handle(ctx, buttonInteraction("4", ComponentChangeSign, "42", "9"))
	require.NotNil(t, resp)
	assert.Contains(t, resp.Data.Content, msgAlreadyResolved)
}

func TestHandlersProduceSingleResponse(t *testing.T) {
	st := store.NewMemoryStore()
	r := newTestRouter(st)
	ctx := context.Background()

	// Every supported interaction yields exactly one response object;
	// the router contract allows nil but none of these handlers
	// produce it.
	interactions := []*Interaction{
		commandInteraction("1", CommandSignRoll, "42", "7"),
		commandInteraction("2", CommandSignCurrent, "42", "7"),
		commandInteraction("3", CommandSignMyPower, "42", "7"),
		buttonInteraction("4", ComponentChangeSign, "42", "9"),
	}
	for _, ic := range interactions {
		resp := r.Handle(ctx, ic)
		require.NotNil(t, resp)
		require.NotNil(t, resp.Data)
		assert.False(t, strings.TrimSpace(resp.Data.Content) == "")
	}
}
