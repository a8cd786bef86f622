package utils

import (
	"context"
	"time"
)

const interactionSeenTTL = 15 * time.Minute

// SeenInteraction marks the interaction id as handled and reports
// whether it was already seen. Discord may redeliver a webhook event;
// the SETNX guard makes the first delivery win. Without redis (or on
// redis failure) it fails open: every delivery looks new, which is
// safe because the store's conditional writes stay the source of
// truth.
func SeenInteraction(ctx context.Context, interactionID string) bool {
	client := GetRedis()
	if client == nil || interactionID == "" {
		return false
	}

	ok, err := client.SetNX(ctx, "interaction:"+interactionID, 1, interactionSeenTTL).Result()
	if err != nil {
		return false
	}
	return !ok
}
