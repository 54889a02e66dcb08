package fleet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type fakeMembers struct {
	members map[string]*models.TeamMember
}

func (f *fakeMembers) GetMember(id string) (*models.TeamMember, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, fmt.Errorf("team member %s not found", id)
	}
	return m, nil
}

type fakePurger struct{ purged []string }

func (f *fakePurger) DeleteForDevice(deviceID string) error {
	f.purged = append(f.purged, deviceID)
	return nil
}

type fakeEmail struct{ body string }

func (f *fakeEmail) Render(link string) (string, error) {
	return f.body + " " + link, nil
}

func newTestRouter(devices ...*models.Device) (*mux.Router, *fakeStore, *fakePurger) {
	store := newFakeStore(devices...)
	svc := NewService(store, &fakePingLog{})
	members := &fakeMembers{members: map[string]*models.TeamMember{
		"tm-1": {ID: "tm-1", Name: "John Smith", Email: "john.smith@company.com"},
	}}
	purger := &fakePurger{}
	h := NewHTTP(store, svc, members, purger, &fakeEmail{body: "deploy:"})

	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/api").Subrouter())
	return r, store, purger
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateDevice(t *testing.T) {
	r, store, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/devices", map[string]string{
		"name":      "vrpa-01",
		"type":      "Hyper-V",
		"ipAddress": "10.0.0.1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	require.Equal(t, models.StatusUnknown, got.Status)
	require.Equal(t, models.CheckoutAvailable, got.CheckoutStatus)
	require.Contains(t, store.devices, got.ID)
}

func TestCreateDevice_Validation(t *testing.T) {
	r, _, _ := newTestRouter(&models.Device{ID: "dev-1", IPAddress: "10.0.0.1"})

	tests := []struct {
		name string
		body map[string]string
		code int
	}{
		{"missing name", map[string]string{"ipAddress": "10.0.0.2"}, http.StatusUnprocessableEntity},
		{"missing ip", map[string]string{"name": "x"}, http.StatusUnprocessableEntity},
		{"malformed ip", map[string]string{"name": "x", "ipAddress": "999.0.0.1"}, http.StatusUnprocessableEntity},
		{"duplicate ip", map[string]string{"name": "x", "ipAddress": "10.0.0.1"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/api/devices", tt.body)
			require.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestUpdateDevice_KeepsOwnAddress(t *testing.T) {
	d := &models.Device{ID: "dev-1", Name: "vrpa-01", IPAddress: "10.0.0.1"}
	r, _, _ := newTestRouter(d, &models.Device{ID: "dev-2", IPAddress: "10.0.0.2"})

	// same address on the edited device itself is fine
	rec := doJSON(t, r, http.MethodPut, "/api/devices/dev-1", map[string]string{
		"ipAddress": "10.0.0.1",
		"name":      "vrpa-01-renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "vrpa-01-renamed", d.Name)

	// another device's address is not
	rec = doJSON(t, r, http.MethodPut, "/api/devices/dev-1", map[string]string{
		"ipAddress": "10.0.0.2",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteDevice_PurgesPings(t *testing.T) {
	r, store, purger := newTestRouter(&models.Device{ID: "dev-1", IPAddress: "10.0.0.1"})

	rec := doJSON(t, r, http.MethodDelete, "/api/devices/dev-1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotContains(t, store.devices, "dev-1")
	require.Equal(t, []string{"dev-1"}, purger.purged)

	rec = doJSON(t, r, http.MethodDelete, "/api/devices/dev-1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutEndpoint(t *testing.T) {
	d := testDevice()
	r, _, _ := newTestRouter(d)

	rec := doJSON(t, r, http.MethodPost, "/api/devices/dev-1/checkout", map[string]any{
		"teamMemberId":       "tm-1",
		"clientName":         "Acme Corp",
		"checkoutDate":       day(1),
		"expectedReturnDate": day(5),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var co models.Checkout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &co))
	require.Equal(t, "John Smith", co.TeamMemberName) // denormalized from the directory
	require.Equal(t, models.CheckoutCheckedOut, d.CheckoutStatus)

	// second checkout is refused at the API: the device is held
	rec = doJSON(t, r, http.MethodPost, "/api/devices/dev-1/checkout", map[string]any{
		"teamMemberId":       "tm-1",
		"clientName":         "Globex",
		"checkoutDate":       day(2),
		"expectedReturnDate": day(6),
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckoutEndpoint_Validation(t *testing.T) {
	d := testDevice()
	r, _, _ := newTestRouter(d)

	t.Run("return before checkout", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/devices/dev-1/checkout", map[string]any{
			"teamMemberId":       "tm-1",
			"clientName":         "Acme Corp",
			"checkoutDate":       day(5),
			"expectedReturnDate": day(1),
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		// fail closed: no state change
		require.Equal(t, models.CheckoutAvailable, d.CheckoutStatus)
	})

	t.Run("unknown member", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/devices/dev-1/checkout", map[string]any{
			"teamMemberId":       "tm-missing",
			"clientName":         "Acme Corp",
			"checkoutDate":       day(1),
			"expectedReturnDate": day(5),
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown device", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/devices/missing/checkout", map[string]any{
			"teamMemberId": "tm-1",
			"clientName":   "Acme Corp",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestScheduleEndpoint_CheckoutBoundary(t *testing.T) {
	future := time.Now().AddDate(0, 0, 10).Truncate(time.Second)
	d := testDevice()
	d.CurrentCheckout = &models.Checkout{
		ID:                 "co-1",
		DeviceID:           "dev-1",
		IsActive:           true,
		CheckoutDate:       time.Now(),
		ExpectedReturnDate: future,
	}
	d.CheckoutStatus = models.CheckoutCheckedOut
	r, _, _ := newTestRouter(d)

	t.Run("day before expected return is rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/devices/dev-1/schedule", map[string]any{
			"teamMemberId":    "tm-1",
			"clientName":      "Acme Corp",
			"scheduledDate":   future.AddDate(0, 0, -1),
			"expectedEndDate": future.AddDate(0, 0, 5),
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("exactly on expected return is accepted", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/devices/dev-1/schedule", map[string]any{
			"teamMemberId":    "tm-1",
			"clientName":      "Acme Corp",
			"scheduledDate":   future,
			"expectedEndDate": future.AddDate(0, 0, 5),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, d.NextScheduled)
	})
}

func TestScheduleEndpoint_Validation(t *testing.T) {
	d := testDevice()
	r, _, _ := newTestRouter(d)

	t.Run("past start date", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/devices/dev-1/schedule", map[string]any{
			"teamMemberId":    "tm-1",
			"clientName":      "Acme Corp",
			"scheduledDate":   time.Now().AddDate(0, 0, -1),
			"expectedEndDate": time.Now().AddDate(0, 0, 5),
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("end before start", func(t *testing.T) {
		start := time.Now().AddDate(0, 0, 5)
		rec := doJSON(t, r, http.MethodPost, "/api/devices/dev-1/schedule", map[string]any{
			"teamMemberId":    "tm-1",
			"clientName":      "Acme Corp",
			"scheduledDate":   start,
			"expectedEndDate": start.AddDate(0, 0, -2),
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestReturnEndpoint(t *testing.T) {
	d := testDevice()
	r, _, _ := newTestRouter(d)

	rec := doJSON(t, r, http.MethodPost, "/api/devices/dev-1/checkout", map[string]any{
		"teamMemberId":       "tm-1",
		"clientName":         "Acme Corp",
		"checkoutDate":       day(1),
		"expectedReturnDate": day(5),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/devices/dev-1/return", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, models.CheckoutAvailable, got.CheckoutStatus)
	require.NotNil(t, got.CurrentCheckout)
	require.False(t, got.CurrentCheckout.IsActive)
}

func TestDeploymentEmailEndpoint(t *testing.T) {
	d := testDevice()
	d.SharefileLink = "https://share.example.com/vrpa-01"
	r, _, _ := newTestRouter(d)

	rec := doJSON(t, r, http.MethodGet, "/api/devices/dev-1/deployment-email", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "deploy: https://share.example.com/vrpa-01", got["body"])
}
