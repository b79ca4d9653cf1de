// Copyright (c) 2026 Medibank. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/the-capital-hub/medibank-backend/internal/platform/request"
	"github.com/the-capital-hub/medibank-backend/internal/platform/respond"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
)

// Handler implements the authenticated /me profile endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with profile routes. The server
// mounts this behind the authentication requirement.
//
// # Endpoints
//   - GET   /                 : Current profile (doctor details, picture URL).
//   - PATCH /                 : Partial profile update.
//   - POST  /profile-picture  : Presigned upload grant for a new picture.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.profile)
	router.Patch("/", handler.update)
	router.Post("/profile-picture", handler.pictureUpload)

	return router
}

type updateProfileRequest struct {
	FullName    *string `json:"full_name"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"date_of_birth"`
	City        *string `json:"city"`
}

type pictureUploadRequest struct {
	ContentType string `json:"content_type"`
}

/*
profile returns the authenticated account's full self view.

GET /api/v1/me
*/
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.accountService.Profile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
update applies a partial profile update.

PATCH /api/v1/me

Description: Absent fields are left untouched; present fields are written,
including explicit empty strings for the optional ones.
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	view, err := handler.accountService.UpdateProfile(request.Context(), userID, &ProfileChanges{
		FullName:    input.FullName,
		Gender:      input.Gender,
		DateOfBirth: input.DateOfBirth,
		City:        input.City,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
pictureUpload grants a presigned upload for a new profile picture.

POST /api/v1/me/profile-picture

Response:
  - 201: UploadGrant with the presigned PUT URL
  - 400: Unsupported content type
*/
func (handler *Handler) pictureUpload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input pictureUploadRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	grant, err := handler.accountService.RequestPictureUpload(request.Context(), userID, input.ContentType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, grant)
}
