// Copyright (c) 2026 Medibank. All rights reserved.

package family

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/the-capital-hub/medibank-backend/internal/platform/request"
	"github.com/the-capital-hub/medibank-backend/internal/platform/respond"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// Handler implements the authenticated family-member endpoints.
type Handler struct {
	familyService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{familyService: service}
}

// Routes returns a [chi.Router] with family-member routes.
//
// # Endpoints
//   - POST / : Add a family member.
//   - GET  / : List the account's family members, paginated.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/", handler.list)

	return router
}

type createRequest struct {
	FullName     string `json:"full_name"`
	Relationship string `json:"relationship"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	BloodGroup   string `json:"blood_group"`
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	record, err := handler.familyService.Create(request.Context(), userID, CreateInput{
		FullName:     input.FullName,
		Relationship: input.Relationship,
		Gender:       input.Gender,
		DateOfBirth:  input.DateOfBirth,
		BloodGroup:   input.BloodGroup,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	records, meta, err := handler.familyService.List(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, meta)
}
