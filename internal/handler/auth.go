package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/planetsapi/planets/internal/handler/dto"
	"github.com/planetsapi/planets/internal/middleware"
	"github.com/planetsapi/planets/internal/service"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			writeError(w, http.StatusConflict, "EMAIL_EXISTS", "That email already exists.")
		default:
			h.handleInputError(w, r, err)
		}
		return
	}

	h.logger.Info("user_registered",
		slog.Int64("user_id", user.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusCreated, dto.MessageResponse{Message: "User created successfully."})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.logger.Warn("login_failed",
				slog.String("reason", "bad_credentials"),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bad email or password")
		default:
			h.handleInputError(w, r, err)
		}
		return
	}

	h.logger.Info("login_succeeded",
		slog.String("token_id", result.Principal.TokenID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message:     "Login succeeded!",
		AccessToken: result.AccessToken,
	})
}

// handleInputError maps field errors to 400 and anything else to 500.
func (h *AuthHandler) handleInputError(w http.ResponseWriter, r *http.Request, err error) {
	if writeFieldError(w, err) {
		return
	}
	h.logger.Error("internal error",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

// writeFieldError writes 400 for service field errors and reports whether it did.
func writeFieldError(w http.ResponseWriter, err error) bool {
	var fe *service.FieldError
	if !errors.As(err, &fe) {
		return false
	}
	switch {
	case errors.Is(err, service.ErrMissingField):
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "Missing required field: "+fe.Field)
	case errors.Is(err, service.ErrInvalidNumber):
		writeError(w, http.StatusBadRequest, "INVALID_NUMBER", "Field must be a number: "+fe.Field)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_FIELD", "Invalid field: "+fe.Field)
	}
	return true
}
