package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockchecker/stockchecker/internal/httputil"
	"github.com/stockchecker/stockchecker/internal/logging"
	"github.com/stockchecker/stockchecker/internal/user"
)

// Handler contains HTTP handlers for the auth endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SignupRequest is the signup request body.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is a user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MessageResponse is a plain message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// Signup handles user registration
// @Summary      Sign up a new user
// @Description  Create a new user account with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup credentials"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Email already registered"
// @Failure      422 {object} httputil.ErrorResponse "Weak password or malformed email"
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusUnprocessableEntity)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		logger.Warn("signup request failed validation", "error", err.Error())
		httputil.RespondErrorWithCode(w, ErrInvalidEmailFormat.Error(), httputil.CodeInvalidEmailFormat, http.StatusUnprocessableEntity)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("signup failed: email already registered")
			httputil.RespondErrorWithCode(w, "Email already registered", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
			return
		}
		if IsWeakPassword(err) {
			logger.Warn("signup failed: weak password", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeWeakPassword, http.StatusUnprocessableEntity)
			return
		}
		if errors.Is(err, ErrInvalidEmailFormat) {
			logger.Warn("signup failed: invalid email format")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusUnprocessableEntity)
			return
		}
		logger.Error("signup failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to sign up user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user signed up successfully", "user_id", newUser.ID)

	httputil.RespondJSON(w, UserResponse{
		ID:        newUser.ID,
		Email:     newUser.Email,
		CreatedAt: newUser.CreatedAt,
	}, http.StatusOK)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate a user and return a bearer access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} TokenResponse
// @Failure      401 {object} httputil.ErrorResponse "Incorrect email or password"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusUnprocessableEntity)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, ErrInvalidCredentials.Error(), httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully")

	httputil.RespondJSON(w, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, http.StatusOK)
}

// Validate returns the current user for a valid token
// @Summary      Validate token
// @Description  Validate the presented bearer token and return the current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Invalid, expired or revoked token"
// @Router       /auth/validate [get]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	current, ok := CurrentUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, ErrMissingCredentials.Error(), httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, UserResponse{
		ID:        current.ID,
		Email:     current.Email,
		CreatedAt: current.CreatedAt,
	}, http.StatusOK)
}

// Logout revokes the presented token
// @Summary      Logout
// @Description  Revoke the presented bearer token. Succeeds even for expired or already-revoked tokens.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessageResponse
// @Failure      403 {object} httputil.ErrorResponse "Missing or malformed bearer token"
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Logout is deliberately not behind RequireAuth: an expired token can
	// still be revoked, which is harmless and permitted. Only a missing or
	// malformed header is rejected.
	token, err := BearerToken(r)
	if err != nil {
		logger.Warn("logout without bearer token")
		httputil.RespondErrorWithCode(w, ErrMissingCredentials.Error(), httputil.CodeMissingAuth, http.StatusForbidden)
		return
	}

	if err := h.service.Logout(token); err != nil {
		logger.Error("logout failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to logout", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged out successfully")

	httputil.RespondJSON(w, MessageResponse{Message: "Successfully logged out"}, http.StatusOK)
}
