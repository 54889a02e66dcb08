package mailtpl

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type HTTP struct{ repo *Repo }

func NewHTTP(r *Repo) *HTTP { return &HTTP{repo: r} }

// RegisterRoutes expects the authenticated /api subrouter.
func (h *HTTP) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/email-template", h.get).Methods(http.MethodGet)
	api.HandleFunc("/email-template", h.update).Methods(http.MethodPut)
}

func (h *HTTP) get(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body, err := h.repo.Get()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"template": body})
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var in struct {
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.repo.Set(in.Template); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"template": in.Template})
}
