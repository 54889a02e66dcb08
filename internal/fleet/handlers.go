package fleet

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/gorilla/mux"
)

// MemberDirectory resolves team members so checkout/schedule records can
// denormalize the display name at creation time.
type MemberDirectory interface {
	GetMember(id string) (*models.TeamMember, error)
}

// PingPurger drops a device's ping history when the device is deleted.
type PingPurger interface {
	DeleteForDevice(deviceID string) error
}

// EmailRenderer produces the deployment email body for a sharefile link.
type EmailRenderer interface {
	Render(sharefileLink string) (string, error)
}

type HTTP struct {
	store   Store
	svc     *Service
	members MemberDirectory
	pings   PingPurger
	email   EmailRenderer
}

func NewHTTP(store Store, svc *Service, members MemberDirectory, pings PingPurger, email EmailRenderer) *HTTP {
	return &HTTP{store: store, svc: svc, members: members, pings: pings, email: email}
}

// RegisterRoutes expects the authenticated /api subrouter.
func (h *HTTP) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/devices", h.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", h.createDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}", h.updateDevice).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/devices/{id}", h.deleteDevice).Methods(http.MethodDelete)

	api.HandleFunc("/devices/{id}/checkout", h.checkoutDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/return", h.returnDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/schedule", h.scheduleDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/schedule", h.cancelSchedule).Methods(http.MethodDelete)

	api.HandleFunc("/devices/{id}/uptime", h.deviceUptime).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}/deployment-email", h.deploymentEmail).Methods(http.MethodGet)
}

func (h *HTTP) listDevices(w http.ResponseWriter, _ *http.Request) {
	devices, err := h.store.ListDevices()
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *HTTP) createDevice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name          string            `json:"name"`
		Type          models.DeviceType `json:"type"`
		CustomType    string            `json:"customType"`
		IPAddress     string            `json:"ipAddress"`
		RootPassword  string            `json:"rootPassword"`
		SharefileLink string            `json:"sharefileLink"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad request", "invalid json", nil)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.IPAddress = strings.TrimSpace(in.IPAddress)
	if in.Name == "" || in.IPAddress == "" {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "name and ipAddress are required", nil)
		return
	}
	if !IsValidIP(in.IPAddress) {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "malformed IP address", map[string]string{"ipAddress": in.IPAddress})
		return
	}
	if h.ipInUse(in.IPAddress, "") {
		models.WriteProblem(w, http.StatusConflict, "Conflict", "IP address already in use", map[string]string{"ipAddress": in.IPAddress})
		return
	}

	d := &models.Device{
		Name:           in.Name,
		Type:           in.Type,
		CustomType:     in.CustomType,
		IPAddress:      in.IPAddress,
		RootPassword:   in.RootPassword,
		SharefileLink:  in.SharefileLink,
		Status:         models.StatusUnknown,
		CheckoutStatus: models.CheckoutAvailable,
	}
	if err := h.store.CreateDevice(d); err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *HTTP) updateDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.mustDevice(w, r)
	if !ok {
		return
	}
	var in struct {
		Name          *string            `json:"name"`
		Type          *models.DeviceType `json:"type"`
		CustomType    *string            `json:"customType"`
		IPAddress     *string            `json:"ipAddress"`
		RootPassword  *string            `json:"rootPassword"`
		SharefileLink *string            `json:"sharefileLink"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad request", "invalid json", nil)
		return
	}
	if in.IPAddress != nil {
		ip := strings.TrimSpace(*in.IPAddress)
		if !IsValidIP(ip) {
			models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "malformed IP address", map[string]string{"ipAddress": ip})
			return
		}
		// a device keeping its own address is not a conflict
		if h.ipInUse(ip, d.ID) {
			models.WriteProblem(w, http.StatusConflict, "Conflict", "IP address already in use", map[string]string{"ipAddress": ip})
			return
		}
		d.IPAddress = ip
	}
	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		d.Type = *in.Type
	}
	if in.CustomType != nil {
		d.CustomType = *in.CustomType
	}
	if in.RootPassword != nil {
		d.RootPassword = *in.RootPassword
	}
	if in.SharefileLink != nil {
		d.SharefileLink = *in.SharefileLink
	}
	d.UpdatedAt = time.Now()
	if err := h.store.SaveDevice(d); err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *HTTP) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteDevice(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			models.WriteProblem(w, http.StatusNotFound, "Not found", "device not found", map[string]string{"id": id})
			return
		}
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	if h.pings != nil {
		_ = h.pings.DeleteForDevice(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTP) checkoutDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.mustDevice(w, r)
	if !ok {
		return
	}
	var in struct {
		TeamMemberID       string    `json:"teamMemberId"`
		ClientName         string    `json:"clientName"`
		CheckoutDate       time.Time `json:"checkoutDate"`
		ExpectedReturnDate time.Time `json:"expectedReturnDate"`
		Notes              string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad request", "invalid json", nil)
		return
	}
	if in.TeamMemberID == "" || in.ClientName == "" {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "teamMemberId and clientName are required", nil)
		return
	}
	if in.CheckoutDate.IsZero() {
		in.CheckoutDate = time.Now()
	}
	if in.ExpectedReturnDate.Before(in.CheckoutDate) {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "expectedReturnDate is before checkoutDate", nil)
		return
	}
	member, err := h.members.GetMember(in.TeamMemberID)
	if err != nil {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "team member not found", map[string]string{"teamMemberId": in.TeamMemberID})
		return
	}
	if !IsAvailable(d) {
		models.WriteProblem(w, http.StatusConflict, "Conflict", "device is already checked out", map[string]string{"id": d.ID})
		return
	}

	co, err := h.svc.Checkout(d.ID, CheckoutRequest{
		TeamMemberID:       member.ID,
		TeamMemberName:     member.Name,
		ClientName:         in.ClientName,
		CheckoutDate:       in.CheckoutDate,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Notes:              in.Notes,
	})
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusCreated, co)
}

func (h *HTTP) returnDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.mustDevice(w, r)
	if !ok {
		return
	}
	var in struct {
		ActualReturnDate *time.Time `json:"actualReturnDate"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&in) // empty body means "return now"
	}
	if in.ActualReturnDate != nil && d.CurrentCheckout != nil &&
		in.ActualReturnDate.Before(d.CurrentCheckout.CheckoutDate) {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "actualReturnDate is before checkoutDate", nil)
		return
	}

	d, err := h.svc.Return(d.ID, in.ActualReturnDate)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *HTTP) scheduleDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.mustDevice(w, r)
	if !ok {
		return
	}
	var in struct {
		TeamMemberID    string    `json:"teamMemberId"`
		ClientName      string    `json:"clientName"`
		ScheduledDate   time.Time `json:"scheduledDate"`
		ExpectedEndDate time.Time `json:"expectedEndDate"`
		Notes           string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "Bad request", "invalid json", nil)
		return
	}
	if in.TeamMemberID == "" || in.ClientName == "" {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "teamMemberId and clientName are required", nil)
		return
	}
	if in.ScheduledDate.IsZero() || !in.ScheduledDate.After(time.Now()) {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "scheduledDate must be in the future", nil)
		return
	}
	if in.ExpectedEndDate.Before(in.ScheduledDate) {
		models.WriteProblem(w, http.StatusUnprocessableEntity, "Validation failed", "expectedEndDate is before scheduledDate", nil)
		return
	}
	member, err := h.members.GetMember(in.TeamMemberID)
	if err != nil {
		models.WriteProblem(w, http.StatusNotFound, "Not found", "team member not found", map[string]string{"teamMemberId": in.TeamMemberID})
		return
	}
	if !CanSchedule(d, in.ScheduledDate) {
		models.WriteProblem(w, http.StatusConflict, "Conflict", "device is checked out past the proposed start date", map[string]string{"id": d.ID})
		return
	}

	sd, err := h.svc.Schedule(d.ID, ScheduleRequest{
		TeamMemberID:    member.ID,
		TeamMemberName:  member.Name,
		ClientName:      in.ClientName,
		ScheduledDate:   in.ScheduledDate,
		ExpectedEndDate: in.ExpectedEndDate,
		Notes:           in.Notes,
	})
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusCreated, sd)
}

func (h *HTTP) cancelSchedule(w http.ResponseWriter, r *http.Request) {
	d, ok := h.mustDevice(w, r)
	if !ok {
		return
	}
	d, err := h.svc.CancelSchedule(d.ID)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *HTTP) deviceUptime(w http.ResponseWriter, r *http.Request) {
	d, ok := h.mustDevice(w, r)
	if !ok {
		return
	}
	days := 30
	if ds := r.URL.Query().Get("days"); ds != "" {
		n, err := strconv.Atoi(ds)
		if err != nil || n <= 0 {
			models.WriteProblem(w, http.StatusBadRequest, "Bad request", "days must be a positive integer", nil)
			return
		}
		days = n
	}
	report, err := h.svc.Uptime(d.ID, days)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *HTTP) deploymentEmail(w http.ResponseWriter, r *http.Request) {
	d, ok := h.mustDevice(w, r)
	if !ok {
		return
	}
	body, err := h.email.Render(d.SharefileLink)
	if err != nil {
		models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deviceId": d.ID, "body": body})
}

func (h *HTTP) mustDevice(w http.ResponseWriter, r *http.Request) (*models.Device, bool) {
	id := mux.Vars(r)["id"]
	d, err := h.store.GetDevice(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			models.WriteProblem(w, http.StatusNotFound, "Not found", "device not found", map[string]string{"id": id})
		} else {
			models.WriteProblem(w, http.StatusInternalServerError, "Storage error", err.Error(), nil)
		}
		return nil, false
	}
	return d, true
}

func (h *HTTP) ipInUse(ip, excludeID string) bool {
	devices, err := h.store.ListDevices()
	if err != nil {
		return false
	}
	return IPConflict(ip, excludeID, devices)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
