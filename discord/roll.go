package discord

import (
	"context"

	"github.com/ArtoLord/enoa-sign-roller/signs"
)

// handleRoll creates today's sign for the guild. The store decides the
// race: of two simultaneous rolls exactly one gets a new sign, the
// other the "already created today" rejection.
func (r *Router) handleRoll(ctx context.Context, ic *Interaction) (*InteractionResponse, error) {
	guildID, actorID, reject := guildActor(ic)
	if reject != nil {
		return reject, nil
	}

	signID := r.engine.RollSignID()
	r.log.Infow("rolling sign", "guild_id", guildID, "user_id", actorID, "sign_id", signID)

	sign, err := r.store.CreateSign(ctx, guildID, signID, actorID)
	if err != nil {
		return nil, err
	}
	if sign == nil {
		r.log.Infow("sign already exists today", "guild_id", guildID, "user_id", actorID)
		return ErrorResponse(msgAlreadyCreated), nil
	}

	text, err := signs.RenderSign(r.catalog, sign)
	if err != nil {
		return nil, err
	}

	resp := MessageResponse(text)
	resp.Data.Components = ButtonRow(InfluenceButton(false))
	return resp, nil
}
