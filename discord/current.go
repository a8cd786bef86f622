package discord

import (
	"context"

	"github.com/ArtoLord/enoa-sign-roller/signs"
)

// handleCurrent shows today's sign to the actor only.
func (r *Router) handleCurrent(ctx context.Context, ic *Interaction) (*InteractionResponse, error) {
	guildID, _, reject := guildActor(ic)
	if reject != nil {
		return reject, nil
	}

	sign, err := r.store.GetGuildSign(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if sign == nil {
		return EphemeralResponse(msgNoSignToday), nil
	}

	text, err := signs.RenderSign(r.catalog, sign)
	if err != nil {
		return nil, err
	}
	return EphemeralResponse(text), nil
}
