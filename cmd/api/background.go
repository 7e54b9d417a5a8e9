package main

import (
	"context"
	"time"
)

// reconcileBadgesEvery sweeps recently active reviewers and reruns the badge
// engine for each. Request-path evaluation can miss grants when its goroutine
// dies with the process; this sweep makes them eventually consistent. Grants
// are idempotent, so overlap with the request path is harmless.
func (app *application) reconcileBadgesEvery(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run once immediately
		app.reconcileBadges()

		for range ticker.C {
			app.reconcileBadges()
		}
	}()
}

func (app *application) reconcileBadges() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	userIDs, err := app.store.Badges.RecentlyActiveUsers(ctx, 500)
	if err != nil {
		app.logger.Errorf("Error listing recently active users: %v", err)
		return
	}

	granted := 0
	for _, userID := range userIDs {
		badges, err := app.badgeEngine.EvaluateAndAward(ctx, userID)
		if err != nil {
			app.logger.Errorf("Error reconciling badges for user %d: %v", userID, err)
			continue
		}
		granted += len(badges)
	}

	if granted > 0 {
		app.logger.Infof("Badge reconciliation granted %d badges across %d users at %s",
			granted, len(userIDs), time.Now().Format(time.RFC1123))
	}
}
