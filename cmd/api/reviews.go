package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gigrate/internal/domain/ratings"
	"gigrate/internal/domain/reviews"
	"gigrate/internal/domain/storage"
	"gigrate/internal/notifications"
	"gigrate/internal/params"

	"github.com/go-chi/chi/v5"
)

type CreateReviewPayload struct {
	Rating    int        `json:"rating" validate:"required,min=1,max=5"`
	Title     string     `json:"title" validate:"max=120"`
	Content   string     `json:"content" validate:"max=4000"`
	EventDate *time.Time `json:"event_date"`
	ImageURLs []string   `json:"image_urls" validate:"omitempty,max=5,dive,url"`
}

// createVenueReviewHandler godoc
//
//	@Summary		Create a venue review
//	@Description	Creates the caller's review for a venue. A user can hold at most one live review per venue.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			venueID	path		int							true	"Venue ID"
//	@Param			payload	body		CreateReviewPayload			true	"Review"
//	@Success		201		{object}	reviews.Review				"Review created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request or duplicate review"
//	@Failure		404		{object}	error						"Venue not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID}/reviews [post]
func (app *application) createVenueReviewHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	app.createReview(w, r, reviews.VenueTarget(venueID))
}

// createBandReviewHandler godoc
//
//	@Summary		Create a band review
//	@Description	Creates the caller's review for a band. A user can hold at most one live review per band.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			bandID	path		int							true	"Band ID"
//	@Param			payload	body		CreateReviewPayload			true	"Review"
//	@Success		201		{object}	reviews.Review				"Review created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request or duplicate review"
//	@Failure		404		{object}	error						"Band not found"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bands/{bandID}/reviews [post]
func (app *application) createBandReviewHandler(w http.ResponseWriter, r *http.Request) {
	bandID, err := strconv.ParseInt(chi.URLParam(r, "bandID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	app.createReview(w, r, reviews.BandTarget(bandID))
}

// createReview runs the shared write path: insert the review and recompute
// the target's aggregate inside one transaction, then evaluate badges after
// commit. The one-review-per-user-per-target rule and the target's existence
// are both enforced by the database inside the same transaction, so there is
// no pre-check race.
func (app *application) createReview(w http.ResponseWriter, r *http.Request, target reviews.Target) {
	user := getUserFromContext(r)

	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review := &reviews.Review{
		UserID:    user.ID,
		Rating:    payload.Rating,
		Title:     payload.Title,
		Content:   payload.Content,
		EventDate: payload.EventDate,
		ImageURLs: payload.ImageURLs,
	}
	if err := review.SetTarget(target); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	err := app.store.WithReviewTx(ctx, func(s *storage.ReviewTx) error {
		if err := s.Reviews.Create(ctx, review); err != nil {
			return err
		}
		return s.Ratings.Recompute(ctx, target)
	})
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrDuplicateReview),
			errors.Is(err, reviews.ErrInvalidRating),
			errors.Is(err, reviews.ErrInvalidTarget):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, reviews.ErrTargetMissing),
			errors.Is(err, ratings.ErrTargetNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.evaluateBadgesAsync(user.ID)

	app.attachShareCode(review)

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getReviewHandler godoc
//
//	@Summary		Get a review
//	@Description	Fetches one review with its author name and avatar
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int		true	"Review ID"
//	@Success		200			{object}	reviews.Review
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/reviews/{reviewID} [get]
func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.attachShareCode(review)

	if err := app.jsonResponse(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateReviewHandler godoc
//
//	@Summary		Update own review
//	@Description	Updates rating, title, content, event date or images of the caller's review. A rating change recomputes the target's aggregate in the same transaction.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int						true	"Review ID"
//	@Param			payload		body		reviews.UpdateParams	true	"Fields to change"
//	@Success		200			{object}	reviews.Review
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error	"Not the author"
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [patch]
func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload reviews.UpdateParams
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Empty() {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	ctx := r.Context()

	var updated *reviews.Review
	err = app.store.WithReviewTx(ctx, func(s *storage.ReviewTx) error {
		var ratingChanged bool
		var txErr error
		updated, ratingChanged, txErr = s.Reviews.Update(ctx, reviewID, user.ID, payload)
		if txErr != nil {
			return txErr
		}
		if !ratingChanged {
			return nil
		}
		return s.Ratings.Recompute(ctx, updated.Target())
	})
	if err != nil {
		app.reviewMutationError(w, r, err)
		return
	}

	app.attachShareCode(updated)

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewHandler godoc
//
//	@Summary		Delete own review
//	@Description	Soft-deletes the caller's review and recomputes the target's aggregate. The user may review the target again afterwards.
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int		true	"Review ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		403			{object}	error	"Not the author"
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [delete]
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	err = app.store.WithReviewTx(ctx, func(s *storage.ReviewTx) error {
		target, txErr := s.Reviews.Delete(ctx, reviewID, user.ID)
		if txErr != nil {
			return txErr
		}
		return s.Ratings.Recompute(ctx, target)
	})
	if err != nil {
		app.reviewMutationError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) reviewMutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, reviews.ErrNotOwner):
		app.forbiddenResponse(w, r, err)
	case errors.Is(err, reviews.ErrInvalidRating),
		errors.Is(err, reviews.ErrTitleTooLong),
		errors.Is(err, reviews.ErrContentTooLong):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

// getVenueReviewsHandler godoc
//
//	@Summary		List venue reviews
//	@Description	Lists a venue's reviews newest first, with the venue's denormalized rating summary
//	@Tags			reviews
//	@Produce		json
//	@Param			venueID	path		int	true	"Venue ID"
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Items per page (max 30)"
//	@Success		200		{object}	ReviewListResponse
//	@Failure		404		{object}	error
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Router			/venues/{venueID}/reviews [get]
func (app *application) getVenueReviewsHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	app.listReviews(w, r, reviews.VenueTarget(venueID))
}

// getBandReviewsHandler godoc
//
//	@Summary		List band reviews
//	@Description	Lists a band's reviews newest first, with the band's denormalized rating summary
//	@Tags			reviews
//	@Produce		json
//	@Param			bandID	path		int	true	"Band ID"
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Items per page (max 30)"
//	@Success		200		{object}	ReviewListResponse
//	@Failure		404		{object}	error
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Router			/bands/{bandID}/reviews [get]
func (app *application) getBandReviewsHandler(w http.ResponseWriter, r *http.Request) {
	bandID, err := strconv.ParseInt(chi.URLParam(r, "bandID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	app.listReviews(w, r, reviews.BandTarget(bandID))
}

type ReviewListResponse struct {
	Reviews       []reviews.Review  `json:"reviews"`
	AverageRating float64           `json:"average_rating"`
	TotalReviews  int               `json:"total_reviews"`
	Pagination    params.Pagination `json:"pagination"`
}

func (app *application) listReviews(w http.ResponseWriter, r *http.Request, target reviews.Target) {
	ctx := r.Context()

	total, average, err := app.store.Ratings.Stats(ctx, target)
	if err != nil {
		switch {
		case errors.Is(err, ratings.ErrTargetNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	pg := params.ParsePagination(r.URL.Query())
	list, err := app.store.Reviews.ListByTarget(ctx, target, &pg)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	for i := range list {
		app.attachShareCode(&list[i])
	}

	resp := ReviewListResponse{
		Reviews:       list,
		AverageRating: average,
		TotalReviews:  total,
		Pagination:    pg,
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMyReviewsHandler godoc
//
//	@Summary		List own reviews
//	@Description	Lists the caller's reviews newest first
//	@Tags			users
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Items per page (max 30)"
//	@Success		200		{object}	ReviewListResponse
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me/reviews [get]
func (app *application) getMyReviewsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	pg := params.ParsePagination(r.URL.Query())
	list, err := app.store.Reviews.ListByUser(r.Context(), user.ID, &pg)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	for i := range list {
		app.attachShareCode(&list[i])
	}

	resp := struct {
		Reviews    []reviews.Review  `json:"reviews"`
		Pagination params.Pagination `json:"pagination"`
	}{
		Reviews:    list,
		Pagination: pg,
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMyVenueReviewHandler godoc
//
//	@Summary		Get own venue review
//	@Description	Fetches the caller's live review for a venue, if any
//	@Tags			reviews
//	@Produce		json
//	@Param			venueID	path		int	true	"Venue ID"
//	@Success		200		{object}	reviews.Review
//	@Failure		404		{object}	error	"Venue missing or not yet reviewed"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID}/reviews/me [get]
func (app *application) getMyVenueReviewHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	app.getMyReviewForTarget(w, r, reviews.VenueTarget(venueID))
}

// getMyBandReviewHandler godoc
//
//	@Summary		Get own band review
//	@Description	Fetches the caller's live review for a band, if any
//	@Tags			reviews
//	@Produce		json
//	@Param			bandID	path		int	true	"Band ID"
//	@Success		200		{object}	reviews.Review
//	@Failure		404		{object}	error	"Band missing or not yet reviewed"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/bands/{bandID}/reviews/me [get]
func (app *application) getMyBandReviewHandler(w http.ResponseWriter, r *http.Request) {
	bandID, err := strconv.ParseInt(chi.URLParam(r, "bandID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	app.getMyReviewForTarget(w, r, reviews.BandTarget(bandID))
}

func (app *application) getMyReviewForTarget(w http.ResponseWriter, r *http.Request, target reviews.Target) {
	user := getUserFromContext(r)
	ctx := r.Context()

	var exists bool
	var err error
	switch target.Kind {
	case reviews.TargetBand:
		exists, err = app.store.Bands.Exists(ctx, target.ID)
	default:
		exists, err = app.store.Venues.Exists(ctx, target.ID)
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if !exists {
		app.notFoundResponse(w, r, reviews.ErrTargetMissing)
		return
	}

	review, err := app.store.Reviews.FindUserReviewForTarget(ctx, user.ID, target)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, reviews.ErrInvalidTarget):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.attachShareCode(review)

	if err := app.jsonResponse(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// attachShareCode fills the derived share code. Encoding only fails on a
// non-positive id, so failures are logged and the field left empty.
func (app *application) attachShareCode(review *reviews.Review) {
	code, err := app.shareCodes.Encode(review.ID)
	if err != nil {
		app.logger.Errorw("encoding share code", "review_id", review.ID, "error", err)
		return
	}
	review.ShareCode = code
}

// evaluateBadgesAsync runs a badge pass for the user off the request path.
// Grant or delivery failures never affect the response that triggered them;
// the hourly reconciliation sweep retries anything missed here.
func (app *application) evaluateBadgesAsync(userID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		granted, err := app.badgeEngine.EvaluateAndAward(ctx, userID)
		if err != nil {
			app.logger.Errorw("badge evaluation failed", "user_id", userID, "error", err)
		}
		if len(granted) == 0 {
			return
		}

		err = notifications.SendBadgeEarned(ctx, app.push, app.store, userID, granted)
		if err != nil && !errors.Is(err, notifications.ErrNoTokens) {
			app.logger.Errorw("badge push failed", "user_id", userID, "error", err)
		}
	}()
}
