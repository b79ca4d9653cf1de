// Copyright (c) 2026 Medibank. All rights reserved.

package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	requestutil "github.com/the-capital-hub/medibank-backend/internal/platform/request"
	"github.com/the-capital-hub/medibank-backend/internal/platform/respond"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// Handler implements the authenticated report endpoints.
type Handler struct {
	reportService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{reportService: service}
}

// Routes returns a [chi.Router] configured with report routes.
//
// # Endpoints
//   - POST /              : Create a report (kind in the body).
//   - GET  /?kind=lab     : List the account's reports of one kind, paginated.
//   - GET  /{reportID}    : Fetch a single report by business ID.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{reportID}", handler.get)

	return router
}

type createRequest struct {
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Facility   string `json:"facility"`
	DoctorName string `json:"doctor_name"`
	ReportDate string `json:"report_date"`
	Notes      string `json:"notes"`

	FileContentType *string `json:"file_content_type"`
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

	result, err := handler.reportService.Create(request.Context(), userID, CreateInput{
		Kind:            Kind(input.Kind),
		Title:           input.Title,
		Facility:        input.Facility,
		DoctorName:      input.DoctorName,
		ReportDate:      input.ReportDate,
		Notes:           input.Notes,
		FileContentType: input.FileContentType,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	kind := Kind(request.URL.Query().Get("kind"))
	params := pagination.FromRequest(request)

	views, meta, err := handler.reportService.List(request.Context(), userID, kind, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, views, meta)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	businessID := chi.URLParam(request, "reportID")
	if businessID == "" {
		respond.Error(writer, request, apperr.ValidationError("Missing report identifier"))
		return
	}

	view, err := handler.reportService.Get(request.Context(), userID, businessID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}
