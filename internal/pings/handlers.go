package pings

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct{ repo *Repo }

func NewHTTP(r *Repo) *HTTP { return &HTTP{repo: r} }

// RegisterRoutes expects the authenticated /api subrouter.
func (h *HTTP) RegisterRoutes(api *mux.Router) {
	// GET /api/ping-history?deviceId=...&days=7
	api.HandleFunc("/ping-history", h.list).Methods(http.MethodGet)
	api.HandleFunc("/ping-history", h.create).Methods(http.MethodPost)
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	days := 0
	if ds := r.URL.Query().Get("days"); ds != "" {
		n, err := strconv.Atoi(ds)
		if err != nil || n < 0 {
			http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
			return
		}
		days = n
	}
	recs, err := h.repo.List(r.URL.Query().Get("deviceId"), days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(recs)
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var in struct {
		DeviceID     string              `json:"deviceId"`
		Status       models.DeviceStatus `json:"status"`
		ResponseTime *float64            `json:"responseTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.DeviceID == "" {
		http.Error(w, "invalid body (need {deviceId, status})", http.StatusBadRequest)
		return
	}
	rec := &models.PingRecord{
		DeviceID:     in.DeviceID,
		Status:       in.Status,
		ResponseTime: in.ResponseTime,
	}
	// timestamp is always server-assigned
	if err := h.repo.Append(rec); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rec)
}
