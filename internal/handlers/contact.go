package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/safar/storefront/internal/store"
)

type ContactHandler struct {
	DB *sql.DB
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Message == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "name, a valid email and a message are required")
		return
	}

	contact, err := store.CreateContact(r.Context(), h.DB, req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, contact)
}
