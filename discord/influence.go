package discord

import (
	"context"
	"errors"

	"github.com/ArtoLord/enoa-sign-roller/models"
	"github.com/ArtoLord/enoa-sign-roller/signs"
	"github.com/ArtoLord/enoa-sign-roller/store"
)

// handleInfluence resolves today's sign on behalf of a non-creator
// user. Validation runs twice: once as a fast path before the store
// transition, and again after a store conflict to re-derive the exact
// rejection reason from current state.
func (r *Router) handleInfluence(ctx context.Context, ic *Interaction) (*InteractionResponse, error) {
	guildID, actorID, reject := guildActor(ic)
	if reject != nil {
		return reject, nil
	}
	r.log.Infow("influence attempt", "guild_id", guildID, "user_id", actorID)

	sign, err := r.store.GetGuildSign(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if verr := r.engine.ValidateInfluence(sign, actorID); verr != nil {
		return ErrorResponse(influenceRejection(verr)), nil
	}

	user, err := r.store.GetUser(ctx, actorID, guildID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{UserID: actorID, GuildID: guildID, Power: models.DefaultPower}
	}

	difficulty, err := r.engine.DifficultyFor(sign.SignID)
	if err != nil {
		// A persisted sign id missing from the catalog means the
		// deployed sign pack does not match the store contents.
		if errors.Is(err, signs.ErrUnknownSign) {
			r.log.Errorw("catalog is missing a persisted sign id",
				"guild_id", guildID, "sign_id", sign.SignID)
		}
		return nil, err
	}

	attempt := r.engine.ResolveAttempt(user.Power, difficulty)
	outcome := models.SignStateFailed
	if attempt.Success {
		outcome = models.SignStateSuccess
	}

	res, err := r.store.ResolveSign(ctx, guildID, outcome, actorID)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case store.ResolveConflictAbsent:
		return ErrorResponse(msgNoSignToday), nil
	case store.ResolveConflictExisting:
		if verr := r.engine.ValidateInfluence(res.Sign, actorID); verr != nil {
			return ErrorResponse(influenceRejection(verr)), nil
		}
		return ErrorResponse(msgCannotNow), nil
	}

	user.Power = attempt.NewPower
	if err := r.store.PutUser(ctx, user); err != nil {
		return nil, err
	}

	// Fire-and-forget: disable the button on the original sign message
	// so it cannot be pressed again. The primary reply below does not
	// depend on this edit succeeding.
	if r.rest != nil && ic.Message != nil {
		if err := r.rest.DisableInfluenceButton(ctx, ic.Message); err != nil {
			r.log.Warnw("cannot disable influence button",
				"channel_id", ic.Message.ChannelID,
				"message_id", ic.Message.ID,
				"error", err,
			)
		}
	}

	text, err := signs.RenderSign(r.catalog, res.Sign)
	if err != nil {
		return nil, err
	}
	return MessageResponse(signs.RenderInfluenceResult(actorID, attempt, text)), nil
}
