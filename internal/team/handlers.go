package team

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type HTTP struct{ repo *Repo }

func NewHTTP(r *Repo) *HTTP { return &HTTP{repo: r} }

// RegisterRoutes expects the authenticated /api subrouter.
func (h *HTTP) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/team-members", h.list).Methods(http.MethodGet)
	api.HandleFunc("/team-members", h.create).Methods(http.MethodPost)
	api.HandleFunc("/team-members/{id}", h.update).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/team-members/{id}", h.remove).Methods(http.MethodDelete)
}

func (h *HTTP) list(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	members, err := h.repo.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(members)
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var in struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	member := &models.TeamMember{Name: in.Name, Email: in.Email}
	if err := h.repo.Create(member); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(member)
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]
	member, err := h.repo.GetMember(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "team member not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var in struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if in.Name != nil {
		member.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		member.Email = *in.Email
	}
	if err := h.repo.Save(member); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(member)
}

func (h *HTTP) remove(w http.ResponseWriter, r *http.Request) {
	ok, err := h.repo.Delete(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "team member not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
