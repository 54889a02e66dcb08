package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/Lokii-git/vrpa-manager/internal/logs"
	"github.com/Lokii-git/vrpa-manager/internal/models"
)

// DeviceLister — the fleet view the supervisor probes.
type DeviceLister interface {
	ListDevices() ([]models.Device, error)
}

// PingRecorder — sink for classified probe results.
type PingRecorder interface {
	RecordPing(deviceID string, status models.DeviceStatus, responseTime *float64) error
}

// Supervisor drives periodic reachability rounds: one ticker, one goroutine
// per device per round. Stop prevents the next round from starting; probes
// already in flight run to completion with their own timeout.
type Supervisor struct {
	devices  DeviceLister
	recorder PingRecorder
	prober   Prober
	interval time.Duration
	timeout  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSupervisor(devices DeviceLister, recorder PingRecorder, prober Prober, interval, timeout time.Duration) *Supervisor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Supervisor{
		devices:  devices,
		recorder: recorder,
		prober:   prober,
		interval: interval,
		timeout:  timeout,
	}
}

// Start launches the probe loop. Idempotent while running.
func (s *Supervisor) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
}

// Stop ends monitoring after the current round. In-flight probes are not
// cancelled.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Supervisor) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.probeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probeAll()
		}
	}
}

func (s *Supervisor) probeAll() {
	devices, err := s.devices.ListDevices()
	if err != nil {
		logs.Logger.Errorf("monitor: list devices: %v", err)
		return
	}
	for _, d := range devices {
		go s.probeOne(d)
	}
}

// probeOne records exactly one ping per round per device. Probe failures
// degrade to an unknown ping and never take the loop down.
func (s *Supervisor) probeOne(d models.Device) {
	defer func() {
		if rec := recover(); rec != nil {
			logs.Logger.Errorf("monitor: probe %s panicked: %v", d.Name, rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.prober.Probe(ctx, d.IPAddress)
	status := Classify(res, err)
	if err != nil {
		logs.Logger.Debugf("monitor: probe %s (%s): %v", d.Name, d.IPAddress, err)
	}
	if rerr := s.recorder.RecordPing(d.ID, status, res.ResponseTime); rerr != nil {
		logs.Logger.Warnf("monitor: record ping for %s: %v", d.Name, rerr)
	}
}
