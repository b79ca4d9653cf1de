// Copyright (c) 2026 Medibank. All rights reserved.

/*
Package auth provides the HTTP delivery layer for the registration protocol.

It implements the gateway for the two-phase registration lifecycle, login,
and the OTP-gated password recovery flow.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Sets the HTTP-only token cookie for browser clients.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/the-capital-hub/medibank-backend/internal/platform/constants"
	requestutil "github.com/the-capital-hub/medibank-backend/internal/platform/request"
	"github.com/the-capital-hub/medibank-backend/internal/platform/respond"
	"github.com/the-capital-hub/medibank-backend/internal/platform/sec"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements registration and authentication HTTP endpoints.
type Handler struct {
	authService *Service
	secureMode  bool
}

// NewHandler constructs a new [Handler].
//
// secureMode controls the Secure attribute on the token cookie; it is off in
// local development where the API serves plain HTTP.
func NewHandler(service *Service, secureMode bool) *Handler {
	return &Handler{authService: service, secureMode: secureMode}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register        : Initiates a registration; dispatches OTP codes.
//   - POST /verify          : Consumes the codes and creates the account.
//   - POST /login           : Authenticates and returns a JWT.
//   - POST /forgot-password : Starts the OTP-gated password reset.
//   - POST /reset-password  : Completes the password reset.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/verify", handler.verify)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	return router
}

// # Request Payloads

type registerRequest struct {
	Email          string `json:"email"`
	MobileNumber   string `json:"mobile_number"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	Gender         string `json:"gender"`
	DateOfBirth    string `json:"date_of_birth"`
	City           string `json:"city"`
	Role           string `json:"role"`
	LicenseNumber  string `json:"license_number"`
	Qualification  string `json:"qualification"`
	Institution    string `json:"institution"`
	GraduationYear int    `json:"graduation_year"`
}

type verifyRequest struct {
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	EmailCode    string `json:"email_code"`
	MobileCode   string `json:"mobile_code"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type forgotPasswordRequest struct {
	Identifier string `json:"identifier"`
}

type resetPasswordRequest struct {
	Identifier      string `json:"identifier"`
	Code            string `json:"code"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

/*
register initiates the two-phase registration.

POST /api/v1/auth/register

Description: Validates the payload, parks the registration, and dispatches
one code per contact channel. No account exists yet, hence 202.

Response:
  - 202: Acknowledgement message; no token
  - 400: Validation failure
  - 409: DUPLICATE_ACCOUNT
  - 502: DELIVERY_FAILED
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	_, err := handler.authService.InitiateRegistration(request.Context(), RegisterInput{
		Email:          input.Email,
		Mobile:         input.MobileNumber,
		Password:       input.Password,
		FullName:       input.FullName,
		Gender:         input.Gender,
		DateOfBirth:    input.DateOfBirth,
		City:           input.City,
		Role:           sec.UserRole(input.Role),
		LicenseNumber:  input.LicenseNumber,
		Qualification:  input.Qualification,
		Institution:    input.Institution,
		GraduationYear: input.GraduationYear,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, map[string]string{
		FieldMessage: "Verification codes sent to your email and mobile number",
	})
}

/*
verify completes the registration and creates the account.

POST /api/v1/auth/verify

Response:
  - 201: AuthResult (token + sanitized account view); token cookie set
  - 400: INVALID_CODE or validation failure
  - 409: DUPLICATE_ACCOUNT (lost a creation race)
  - 410: CODE_EXPIRED or REGISTRATION_EXPIRED
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var input verifyRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.authService.VerifyAndCreate(request.Context(), VerifyInput{
		Email:      input.Email,
		Mobile:     input.MobileNumber,
		EmailCode:  input.EmailCode,
		MobileCode: input.MobileCode,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setTokenCookie(writer, result.Token)
	respond.Created(writer, result)
}

/*
login authenticates a user and mints a token.

POST /api/v1/auth/login

Description: The identifier may be an email address or a 10-digit mobile
number; mobile identifiers are normalized before lookup.

Response:
  - 200: AuthResult; token cookie set
  - 401: Invalid credentials (identical for unknown identifier and bad password)
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), input.Identifier, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setTokenCookie(writer, result.Token)
	respond.OK(writer, result)
}

/*
forgotPassword starts the OTP-gated password reset.

POST /api/v1/auth/forgot-password

Description: Always answers 202 with the same message whether or not the
identifier matched an account.
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Identifier); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, map[string]string{
		FieldMessage: "If the account exists, a verification code has been sent",
	})
}

/*
resetPassword completes the password reset.

POST /api/v1/auth/reset-password

Response:
  - 200: Confirmation message
  - 400: INVALID_CODE, confirmation mismatch, or validation failure
  - 410: CODE_EXPIRED
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Match(FieldConfirmPassword, input.ConfirmPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Identifier, input.Code, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Your password has been updated",
	})
}

// setTokenCookie attaches the access token as an HTTP-only cookie for
// browser clients. Mobile clients read the token from the response body.
func (handler *Handler) setTokenCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AuthTokenCookieName,
		Value:    token,
		Path:     constants.AuthTokenCookiePath,
		Expires:  time.Now().Add(sec.AccessTokenTTL),
		HttpOnly: true,
		Secure:   handler.secureMode,
		SameSite: http.SameSiteLaxMode,
	})
}
