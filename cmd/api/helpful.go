package main

import (
	"errors"
	"net/http"
	"strconv"

	"gigrate/internal/domain/helpfulness"
	"gigrate/internal/domain/storage"

	"github.com/go-chi/chi/v5"
)

type MarkHelpfulPayload struct {
	IsHelpful *bool `json:"is_helpful" validate:"required"`
}

type HelpfulResponse struct {
	Vote         *helpfulness.Vote `json:"vote"`
	HelpfulCount int               `json:"helpful_count"`
}

// markHelpfulHandler godoc
//
//	@Summary		Vote a review helpful or not
//	@Description	Records the caller's helpful/not-helpful vote on a review. Revoting replaces the previous vote. Authors cannot vote on their own reviews.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int					true	"Review ID"
//	@Param			payload		body		MarkHelpfulPayload	true	"Vote"
//	@Success		200			{object}	HelpfulResponse
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error	"Self-vote"
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/helpful [post]
func (app *application) markHelpfulHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload MarkHelpfulPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	var vote *helpfulness.Vote
	var count int
	err = app.store.WithReviewTx(ctx, func(s *storage.ReviewTx) error {
		var txErr error
		vote, txErr = s.Helpfulness.MarkHelpful(ctx, reviewID, user.ID, *payload.IsHelpful)
		if txErr != nil {
			return txErr
		}
		count, txErr = s.Helpfulness.HelpfulCount(ctx, reviewID)
		return txErr
	})
	if err != nil {
		switch {
		case errors.Is(err, helpfulness.ErrReviewNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, helpfulness.ErrSelfVote):
			app.forbiddenResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// The review author may have crossed a helpfulness threshold.
	review, err := app.store.Reviews.GetByID(ctx, reviewID)
	if err == nil {
		app.evaluateBadgesAsync(review.UserID)
	}

	if err := app.jsonResponse(w, http.StatusOK, HelpfulResponse{Vote: vote, HelpfulCount: count}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getHelpfulVoteHandler godoc
//
//	@Summary		Get own helpfulness vote
//	@Description	Returns the caller's vote on a review, null if they have not voted, plus the review's helpful count
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int	true	"Review ID"
//	@Success		200			{object}	HelpfulResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/helpful [get]
func (app *application) getHelpfulVoteHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	count, err := app.store.Helpfulness.HelpfulCount(ctx, reviewID)
	if err != nil {
		switch {
		case errors.Is(err, helpfulness.ErrReviewNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	vote, err := app.store.Helpfulness.GetVote(ctx, reviewID, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, HelpfulResponse{Vote: vote, HelpfulCount: count}); err != nil {
		app.internalServerError(w, r, err)
	}
}
