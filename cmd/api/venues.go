package main

import (
	"errors"
	"net/http"
	"strconv"

	"gigrate/internal/domain/venues"

	"github.com/go-chi/chi/v5"
)

type CreateVenuePayload struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Address     string   `json:"address" validate:"required,max=255"`
	City        string   `json:"city" validate:"required,max=80"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Capacity    *int     `json:"capacity" validate:"omitempty,gt=0"`
	ImageURLs   []string `json:"image_urls" validate:"omitempty,max=5,dive,url"`
}

// createVenueHandler godoc
//
//	@Summary		Create a venue
//	@Description	Registers a live-music venue so it can collect reviews
//	@Tags			venues
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateVenuePayload			true	"Venue details"
//	@Success		201		{object}	venues.Venue				"Venue created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/venues [post]
func (app *application) createVenueHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venue := &venues.Venue{
		Name:        payload.Name,
		Address:     payload.Address,
		City:        payload.City,
		Description: payload.Description,
		Capacity:    payload.Capacity,
		ImageURLs:   payload.ImageURLs,
	}

	if err := app.store.Venues.Create(r.Context(), venue); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, venue); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getVenueHandler godoc
//
//	@Summary		Get a venue
//	@Description	Fetches one venue with its denormalized rating summary
//	@Tags			venues
//	@Produce		json
//	@Param			venueID	path		int	true	"Venue ID"
//	@Success		200		{object}	venues.Venue
//	@Failure		404		{object}	error
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Router			/venues/{venueID} [get]
func (app *application) getVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		switch {
		case errors.Is(err, venues.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, venue); err != nil {
		app.internalServerError(w, r, err)
	}
}
