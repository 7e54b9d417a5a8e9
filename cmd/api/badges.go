package main

import (
	"errors"
	"net/http"

	"gigrate/internal/domain/badges"
	"gigrate/internal/notifications"
)

// getMyBadgesHandler godoc
//
//	@Summary		List earned badges
//	@Description	Lists the caller's earned badges, newest first
//	@Tags			badges
//	@Produce		json
//	@Success		200	{array}		badges.UserBadge
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me/badges [get]
func (app *application) getMyBadgesHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	earned, err := app.store.Badges.EarnedByUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, earned); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getBadgeProgressHandler godoc
//
//	@Summary		Badge progress
//	@Description	Reports the caller's progress toward every catalog badge, including percent complete and tier label
//	@Tags			badges
//	@Produce		json
//	@Success		200	{array}		badges.Progress
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me/badges/progress [get]
func (app *application) getBadgeProgressHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	progress, err := app.badgeEngine.Progress(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, progress); err != nil {
		app.internalServerError(w, r, err)
	}
}

// evaluateBadgesHandler godoc
//
//	@Summary		Evaluate badges now
//	@Description	Runs a synchronous badge evaluation pass for the caller and returns the badges granted by this call. Safe to call repeatedly.
//	@Tags			badges
//	@Produce		json
//	@Success		200	{array}		badges.Badge	"Badges granted by this pass, possibly empty"
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me/badges/evaluate [post]
func (app *application) evaluateBadgesHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	ctx := r.Context()

	granted, err := app.badgeEngine.EvaluateAndAward(ctx, user.ID)
	if err != nil {
		// Badges granted before the failure are durable; the next pass
		// picks up the rest.
		if len(granted) == 0 {
			app.internalServerError(w, r, err)
			return
		}
		app.logger.Errorw("partial badge evaluation", "user_id", user.ID, "error", err)
	}

	if len(granted) > 0 {
		err := notifications.SendBadgeEarned(ctx, app.push, app.store, user.ID, granted)
		if err != nil && !errors.Is(err, notifications.ErrNoTokens) {
			app.logger.Errorw("badge push failed", "user_id", user.ID, "error", err)
		}
	}

	if granted == nil {
		granted = []badges.Badge{}
	}

	if err := app.jsonResponse(w, http.StatusOK, granted); err != nil {
		app.internalServerError(w, r, err)
	}
}
