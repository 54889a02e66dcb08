package fleet

import (
	"time"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/google/uuid"
)

// PingLog — append-only ping history the service writes to and reads from.
type PingLog interface {
	Append(rec *models.PingRecord) error
	DeviceHistory(deviceID string, days int) ([]models.PingRecord, error)
}

// Service owns checkout/schedule transitions and ping recording.
//
// Contract note: Checkout and Schedule do NOT re-validate availability. The
// caller (the HTTP layer here) is expected to have checked IsAvailable /
// CanSchedule first; calling out of turn silently overwrites the existing
// active checkout. Last writer wins on
// concurrent mutations of the same device — there is no per-device lock or
// version token.
type Service struct {
	store Store
	pings PingLog
	now   func() time.Time
}

func NewService(store Store, pings PingLog) *Service {
	return &Service{store: store, pings: pings, now: time.Now}
}

type CheckoutRequest struct {
	TeamMemberID       string
	TeamMemberName     string
	ClientName         string
	CheckoutDate       time.Time
	ExpectedReturnDate time.Time
	Notes              string
}

type ScheduleRequest struct {
	TeamMemberID    string
	TeamMemberName  string
	ClientName      string
	ScheduledDate   time.Time
	ExpectedEndDate time.Time
	Notes           string
}

// Checkout hands the device to a team member and caches the checked-out state
// on the device record.
func (s *Service) Checkout(deviceID string, req CheckoutRequest) (*models.Checkout, error) {
	d, err := s.store.GetDevice(deviceID)
	if err != nil {
		return nil, err
	}

	co := &models.Checkout{
		ID:                 uuid.NewString(),
		DeviceID:           deviceID,
		TeamMemberID:       req.TeamMemberID,
		TeamMemberName:     req.TeamMemberName,
		ClientName:         req.ClientName,
		CheckoutDate:       req.CheckoutDate,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Notes:              req.Notes,
		IsActive:           true,
	}
	if err := s.store.SaveCheckout(co); err != nil {
		return nil, err
	}

	d.CurrentCheckoutID = &co.ID
	d.CurrentCheckout = co
	d.CheckoutStatus = models.CheckoutCheckedOut
	d.UpdatedAt = s.now()
	if err := s.store.SaveDevice(d); err != nil {
		return nil, err
	}
	return co, nil
}

// Return deactivates the current checkout. The record stays attached to the
// device as its one level of in-line history. No-op when nothing is checked
// out. A nil actualReturn defaults to now.
func (s *Service) Return(deviceID string, actualReturn *time.Time) (*models.Device, error) {
	d, err := s.store.GetDevice(deviceID)
	if err != nil {
		return nil, err
	}
	if d.CurrentCheckout == nil {
		return d, nil
	}

	when := s.now()
	if actualReturn != nil {
		when = *actualReturn
	}
	d.CurrentCheckout.IsActive = false
	d.CurrentCheckout.ActualReturnDate = &when
	if err := s.store.SaveCheckout(d.CurrentCheckout); err != nil {
		return nil, err
	}

	d.CheckoutStatus = models.CheckoutAvailable
	d.UpdatedAt = s.now()
	if err := s.store.SaveDevice(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Schedule replaces the device's single future reservation slot.
func (s *Service) Schedule(deviceID string, req ScheduleRequest) (*models.ScheduledDeployment, error) {
	d, err := s.store.GetDevice(deviceID)
	if err != nil {
		return nil, err
	}

	sd := &models.ScheduledDeployment{
		ID:              uuid.NewString(),
		DeviceID:        deviceID,
		TeamMemberID:    req.TeamMemberID,
		TeamMemberName:  req.TeamMemberName,
		ClientName:      req.ClientName,
		ScheduledDate:   req.ScheduledDate,
		ExpectedEndDate: req.ExpectedEndDate,
		Notes:           req.Notes,
		IsActive:        true,
	}
	if err := s.store.SaveSchedule(sd); err != nil {
		return nil, err
	}

	old := d.NextScheduledID
	d.NextScheduledID = &sd.ID
	d.NextScheduled = sd
	d.UpdatedAt = s.now()
	if err := s.store.SaveDevice(d); err != nil {
		return nil, err
	}
	if old != nil {
		_ = s.store.DeleteSchedule(*old)
	}
	return sd, nil
}

// CancelSchedule clears the reservation slot. No-op without one.
func (s *Service) CancelSchedule(deviceID string) (*models.Device, error) {
	d, err := s.store.GetDevice(deviceID)
	if err != nil {
		return nil, err
	}
	if d.NextScheduledID == nil {
		return d, nil
	}

	old := *d.NextScheduledID
	d.NextScheduledID = nil
	d.NextScheduled = nil
	d.UpdatedAt = s.now()
	if err := s.store.SaveDevice(d); err != nil {
		return nil, err
	}
	_ = s.store.DeleteSchedule(old)
	return d, nil
}

// RecordPing appends a probe result and moves the device's reachability
// status to the latest observation. Checkout state is never touched here.
func (s *Service) RecordPing(deviceID string, status models.DeviceStatus, responseTime *float64) error {
	d, err := s.store.GetDevice(deviceID)
	if err != nil {
		return err
	}

	if err := s.pings.Append(&models.PingRecord{
		DeviceID:     deviceID,
		Timestamp:    s.now(),
		Status:       status,
		ResponseTime: responseTime,
	}); err != nil {
		return err
	}

	d.Status = status
	d.UpdatedAt = s.now()
	return s.store.SaveDevice(d)
}

// UptimeReport — daily availability plus the unweighted overall mean.
type UptimeReport struct {
	DeviceID string                `json:"deviceId"`
	Days     int                   `json:"days"`
	History  []models.DeviceUptime `json:"history"`
	Overall  float64               `json:"overallUptime"`
}

func (s *Service) Uptime(deviceID string, days int) (*UptimeReport, error) {
	if _, err := s.store.GetDevice(deviceID); err != nil {
		return nil, err
	}
	pings, err := s.pings.DeviceHistory(deviceID, days)
	if err != nil {
		return nil, err
	}
	history := UptimeHistory(pings)
	return &UptimeReport{
		DeviceID: deviceID,
		Days:     days,
		History:  history,
		Overall:  OverallUptime(history),
	}, nil
}
