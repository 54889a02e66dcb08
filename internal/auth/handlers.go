package auth

import (
	"encoding/json"
	"net/http"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type HTTP struct {
	repo   *Repo
	tokens *Tokens
}

func NewHTTP(repo *Repo, tokens *Tokens) *HTTP { return &HTTP{repo: repo, tokens: tokens} }

// RegisterPublicRoutes mounts login on the unauthenticated router.
func (h *HTTP) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/api/auth/login", h.login).Methods(http.MethodPost)
}

// RegisterRoutes expects the authenticated /api subrouter.
func (h *HTTP) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/auth/verify", h.verify).Methods(http.MethodGet)
	api.HandleFunc("/auth/change-password", h.changePassword).Methods(http.MethodPost)
}

func (h *HTTP) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Password == "" {
		models.WriteProblem(w, http.StatusBadRequest, "Bad request", "username and password are required", nil)
		return
	}

	user, err := h.repo.FindByUsername(in.Username)
	if err != nil {
		models.WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		models.WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials", nil)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Token error", err.Error(), nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *HTTP) verify(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"valid": true,
		"user": map[string]string{
			"id":       claims.Subject,
			"username": claims.Username,
		},
	})
}

func (h *HTTP) changePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.CurrentPassword == "" || in.NewPassword == "" {
		models.WriteProblem(w, http.StatusBadRequest, "Bad request", "current and new password are required", nil)
		return
	}
	if len(in.NewPassword) < 8 {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "password must be at least 8 characters", nil)
		return
	}

	claims := ClaimsFrom(r)
	user, err := h.repo.FindByID(claims.Subject)
	if err != nil {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "user not found", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
		models.WriteProblem(w, http.StatusUnauthorized, "Unauthorized", "current password is incorrect", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), 10)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Hash error", err.Error(), nil)
		return
	}
	user.PasswordHash = string(hash)
	if err := h.repo.Save(user); err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
}
