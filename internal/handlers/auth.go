package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
)

type AuthHandler struct {
	DB       *sql.DB
	Sessions *Sessions
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Name == "" || len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "email, name and a password of at least 8 characters are required")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Email, req.Name, req.Password)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if err := h.Sessions.setUser(w, r, user.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := store.Authenticate(r.Context(), h.DB, strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.Sessions.setUser(w, r, user.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.clear(w, r)
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, user *models.User) {
	respondJSON(w, http.StatusOK, user)
}
