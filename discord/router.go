package discord

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ArtoLord/enoa-sign-roller/signs"
	"github.com/ArtoLord/enoa-sign-roller/store"
)

// Command names and component ids the router recognizes.
const (
	CommandSignRoll     = "sign_roll"
	CommandSignCurrent  = "sign_current"
	CommandSignMyPower  = "sign_my_power"
	ComponentChangeSign = "change_sign"
)

// Localized user-facing messages. Raw internal errors never reach the
// user; they are logged and replaced with msgSomethingWrong.
const (
	msgGuildOnly       = "Мне можно написать только с сервера."
	msgSomethingWrong  = "Что-то пошло не так"
	msgAlreadyCreated  = "Знамение на сегодня уже создано, приходи завтра"
	msgNoSignToday     = "Сегодня еще не было знамения. Ты можешь его создать!"
	msgAlreadyResolved = "Кто-то уже повлиял на знамение сегодня"
	msgCreatorCannot   = "Повлиять на знамение может только тот, кто его не создавал"
	msgCannotNow       = "Ты не можешь повлиять на знамение сейчас"
)

// Router maps an inbound interaction to exactly one handler and
// normalizes every handler outcome into at most one response. Any
// handler failure is converted into a localized error response here;
// nothing internal escapes to the transport layer.
type Router struct {
	store   store.Store
	engine  *signs.Engine
	catalog *signs.Catalog
	rest    *RestClient
	log     *zap.SugaredLogger
}

// NewRouter wires the router. rest may be nil, which disables
// fire-and-forget message edits (useful in tests).
func NewRouter(st store.Store, engine *signs.Engine, catalog *signs.Catalog, rest *RestClient, log *zap.SugaredLogger) *Router {
	return &Router{store: st, engine: engine, catalog: catalog, rest: rest, log: log}
}

// Handle processes one interaction and returns its response, or nil
// for fire-and-forget outcomes. It never returns an error: failures
// become the generic localized error reply.
func (r *Router) Handle(ctx context.Context, ic *Interaction) *InteractionResponse {
	resp, err := r.dispatch(ctx, ic)
	if err != nil {
		r.log.Errorw("interaction failed",
			"interaction_id", ic.ID,
			"guild_id", ic.GuildID,
			"user_id", ic.ActorID(),
			"error", err,
		)
		return ErrorResponse(msgSomethingWrong)
	}
	return resp
}

func (r *Router) dispatch(ctx context.Context, ic *Interaction) (*InteractionResponse, error) {
	switch ic.Type {
	case InteractionTypeApplicationCommand:
		if ic.Data == nil {
			return nil, fmt.Errorf("command interaction %s has no data", ic.ID)
		}
		r.log.Infow("received command", "command", ic.Data.Name, "guild_id", ic.GuildID)
		switch ic.Data.Name {
		case CommandSignRoll:
			return r.handleRoll(ctx, ic)
		case CommandSignCurrent:
			return r.handleCurrent(ctx, ic)
		case CommandSignMyPower:
			return r.handleMyPower(ctx, ic)
		default:
			return nil, fmt.Errorf("command %q not found", ic.Data.Name)
		}

	case InteractionTypeMessageComponent:
		if ic.Data == nil || ic.Data.ComponentType != ComponentTypeButton {
			return nil, fmt.Errorf("unsupported component on interaction %s", ic.ID)
		}
		if ic.Data.CustomID != ComponentChangeSign {
			return nil, fmt.Errorf("component %q not found", ic.Data.CustomID)
		}
		return r.handleInfluence(ctx, ic)

	default:
		return nil, fmt.Errorf("interaction type %d not supported", ic.Type)
	}
}

// guildActor extracts the guild and actor ids. When the interaction
// was issued outside any guild it returns the localized rejection
// instead.
func guildActor(ic *Interaction) (guildID, actorID string, reject *InteractionResponse) {
	if ic.GuildID == "" {
		return "", "", ErrorResponse(msgGuildOnly)
	}
	return ic.GuildID, ic.ActorID(), nil
}

// influenceRejection maps a domain rejection to its localized message.
func influenceRejection(err error) string {
	switch err {
	case signs.ErrNoSignToday:
		return msgNoSignToday
	case signs.ErrAlreadyResolved:
		return msgAlreadyResolved
	case signs.ErrCreatorCannotInfluence:
		return msgCreatorCannot
	default:
		return msgCannotNow
	}
}
