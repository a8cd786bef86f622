package discord

import (
	"context"
	"fmt"

	"github.com/ArtoLord/enoa-sign-roller/models"
)

// handleMyPower reports the actor's shaman power in this guild.
func (r *Router) handleMyPower(ctx context.Context, ic *Interaction) (*InteractionResponse, error) {
	guildID, actorID, reject := guildActor(ic)
	if reject != nil {
		return reject, nil
	}

	user, err := r.store.GetUser(ctx, actorID, guildID)
	if err != nil {
		return nil, err
	}

	power := models.DefaultPower
	if user != nil {
		power = user.Power
	}
	return EphemeralResponse(fmt.Sprintf("Твоя сила шамана: %d", power)), nil
}
