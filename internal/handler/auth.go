package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recordbox/recordbox/internal/auth"
	"github.com/recordbox/recordbox/internal/handler/dto"
	"github.com/recordbox/recordbox/internal/repository"
)

// AuthHandler handles signup and login.
type AuthHandler struct {
	codec  *auth.TokenCodec
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(codec *auth.TokenCodec, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		codec:  codec,
		logger: logger,
	}
}

// Signup handles POST /api/v1/signin/.
// Creates a user and returns its email with a freshly issued token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if err := validateEmail(req.Email); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid email address")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	sess := repository.SessionFromContext(r.Context())
	user, err := sess.CreateUser(r.Context(), req.Email, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			writeDetail(w, http.StatusConflict, "Email already registered")
			return
		}
		h.logger.Error("failed to create user", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.codec.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user_created", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.SignupResponse{
		Email: user.Email,
		JWT:   token,
	})
}

// Login handles POST /api/v1/login/.
// Unknown email and wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if err := validateEmail(req.Email); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid email address")
		return
	}

	sess := repository.SessionFromContext(r.Context())
	user, err := sess.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.writeLoginError(w)
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	match, err := auth.VerifyPassword(req.Password, user.HashedPassword)
	if err != nil || !match {
		h.writeLoginError(w)
		return
	}

	token, err := h.codec.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		JWT:       token,
		TokenType: "bearer",
	})
}

// writeLoginError writes the single 401 used for every login failure.
func (h *AuthHandler) writeLoginError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
}
