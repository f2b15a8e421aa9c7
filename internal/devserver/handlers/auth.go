package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/runnervault/internal/common"
	"github.com/dmitrijs2005/runnervault/internal/devserver/auth"
	"github.com/dmitrijs2005/runnervault/internal/devserver/httpx"
	"github.com/dmitrijs2005/runnervault/internal/devserver/store"
)

type credentialsRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	DiscordID string `json:"discordId"`
}

// Register creates a new account. It has no session effect: the caller is
// expected to log in afterwards.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.RespondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := store.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		DiscordID:    req.DiscordID,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			httpx.RespondError(w, http.StatusConflict, "username already taken")
			return
		}
		h.log.Error(r.Context(), "create user failed", "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, map[string]string{
		"_id":      user.ID,
		"username": user.Username,
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			httpx.RespondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error(r.Context(), "user lookup failed", "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		httpx.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.log.Error(r.Context(), "token generation failed", "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Me returns the identity record for the token's user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			httpx.RespondError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		h.log.Error(r.Context(), "user lookup failed", "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]string{
		"_id":       user.ID,
		"username":  user.Username,
		"discordId": user.DiscordID,
	})
}
