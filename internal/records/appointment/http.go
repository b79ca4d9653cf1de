// Copyright (c) 2026 Medibank. All rights reserved.

package appointment

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	requestutil "github.com/the-capital-hub/medibank-backend/internal/platform/request"
	"github.com/the-capital-hub/medibank-backend/internal/platform/respond"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// Handler implements the authenticated appointment endpoints.
type Handler struct {
	appointmentService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{appointmentService: service}
}

// Routes returns a [chi.Router] configured with appointment routes.
//
// # Endpoints
//   - POST /                  : Create an appointment (optional attachments).
//   - GET  /                  : List the account's appointments, paginated.
//   - GET  /{appointmentID}   : Fetch a single appointment by business ID.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{appointmentID}", handler.get)

	return router
}

type createRequest struct {
	DoctorName  string `json:"doctor_name"`
	Specialty   string `json:"specialty"`
	ScheduledAt string `json:"scheduled_at"` // RFC 3339
	Location    string `json:"location"`
	Vitals      Vitals `json:"vitals"`
	Notes       string `json:"notes"`

	PrescriptionContentType *string `json:"prescription_content_type"`
	ReportContentType       *string `json:"report_content_type"`
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

	scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("scheduled_at", "Must be an RFC 3339 timestamp"))
		return
	}

	result, err := handler.appointmentService.Create(request.Context(), userID, CreateInput{
		DoctorName:              input.DoctorName,
		Specialty:               input.Specialty,
		ScheduledAt:             scheduledAt,
		Location:                input.Location,
		Vitals:                  input.Vitals,
		Notes:                   input.Notes,
		PrescriptionContentType: input.PrescriptionContentType,
		ReportContentType:       input.ReportContentType,
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

	params := pagination.FromRequest(request)
	views, meta, err := handler.appointmentService.List(request.Context(), userID, params)
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

	businessID := chi.URLParam(request, "appointmentID")
	if businessID == "" {
		respond.Error(writer, request, apperr.ValidationError("Missing appointment identifier"))
		return
	}

	view, err := handler.appointmentService.Get(request.Context(), userID, businessID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}
