package main

import (
	"errors"
	"net/http"
	"strconv"

	"gigrate/internal/domain/bands"

	"github.com/go-chi/chi/v5"
)

type CreateBandPayload struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Genre       string   `json:"genre" validate:"required,max=60"`
	Hometown    *string  `json:"hometown" validate:"omitempty,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	ImageURLs   []string `json:"image_urls" validate:"omitempty,max=5,dive,url"`
}

// createBandHandler godoc
//
//	@Summary		Create a band
//	@Description	Registers a band so it can collect reviews
//	@Tags			bands
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateBandPayload			true	"Band details"
//	@Success		201		{object}	bands.Band					"Band created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bands [post]
func (app *application) createBandHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateBandPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	band := &bands.Band{
		Name:        payload.Name,
		Genre:       payload.Genre,
		Hometown:    payload.Hometown,
		Description: payload.Description,
		ImageURLs:   payload.ImageURLs,
	}

	if err := app.store.Bands.Create(r.Context(), band); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, band); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getBandHandler godoc
//
//	@Summary		Get a band
//	@Description	Fetches one band with its denormalized rating summary
//	@Tags			bands
//	@Produce		json
//	@Param			bandID	path		int	true	"Band ID"
//	@Success		200		{object}	bands.Band
//	@Failure		404		{object}	error
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Router			/bands/{bandID} [get]
func (app *application) getBandHandler(w http.ResponseWriter, r *http.Request) {
	bandID, err := strconv.ParseInt(chi.URLParam(r, "bandID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	band, err := app.store.Bands.GetByID(r.Context(), bandID)
	if err != nil {
		switch {
		case errors.Is(err, bands.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, band); err != nil {
		app.internalServerError(w, r, err)
	}
}
