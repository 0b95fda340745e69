package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/internal/server/auth"
	"github.com/driftlabs/driftsync/internal/server/jwt"
	"github.com/driftlabs/driftsync/internal/server/storage"
	"github.com/driftlabs/driftsync/internal/validation"
	"github.com/driftlabs/driftsync/pkg/api"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
	tokens *jwt.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, tokens *jwt.Service) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		users:  users,
		tokens: tokens,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", "error", err)
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			writeError(h.logger, w, http.StatusConflict, api.CodeInvalidRequest, "username already taken")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user registered", "username", user.Username, "user_id", user.ID)

	writeJSON(h.logger, w, http.StatusCreated, api.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	user, err := h.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Same answer as a wrong password: no username probing.
			writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "invalid credentials")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			h.logger.WarnContext(ctx, "login failed", "username", req.Username)
			writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "invalid credentials")
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify password", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	token, expiresIn, err := h.tokens.IssueAccessToken(user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user logged in", "username", user.Username, "user_id", user.ID)

	writeJSON(h.logger, w, http.StatusOK, api.TokenResponse{
		AccessToken: token,
		UserID:      user.ID,
		ExpiresIn:   expiresIn,
	})
}
