package monitor

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Lokii-git/vrpa-manager/internal/models"
)

// ProbeResult — outcome of a completed probe. Reachable=false means the probe
// finished and explicitly reported the address as down.
type ProbeResult struct {
	Reachable    bool
	ResponseTime *float64 // milliseconds, nil when unreachable
}

// Prober checks one address. A non-nil error means the probe itself failed
// (timeout, network error) and says nothing about the target being down.
type Prober interface {
	Probe(ctx context.Context, address string) (ProbeResult, error)
}

// Classify maps a probe outcome to the tri-state device status. A failed
// probe is always unknown, never offline: offline is reserved for a probe
// that completed and reported unreachability, so that unknown periods read
// as missing data rather than downtime.
func Classify(res ProbeResult, err error) models.DeviceStatus {
	if err != nil {
		return models.StatusUnknown
	}
	if res.Reachable {
		return models.StatusOnline
	}
	return models.StatusOffline
}

// SimulatedProber derives reachability from the address's numeric pattern
// plus randomness. A stand-in for real ICMP/TCP probing; the classification
// contract above is what matters, not these odds. Uses the shared math/rand
// source, which is safe for the concurrent per-device probes.
type SimulatedProber struct{}

func NewSimulatedProber() *SimulatedProber { return &SimulatedProber{} }

func (p *SimulatedProber) Probe(ctx context.Context, address string) (ProbeResult, error) {
	// simulated network delay, 500-1500ms
	delay := time.Duration(500+rand.Intn(1000)) * time.Millisecond
	select {
	case <-ctx.Done():
		return ProbeResult{}, ctx.Err()
	case <-time.After(delay):
	}

	lastOctet := 0
	if parts := strings.Split(address, "."); len(parts) == 4 {
		lastOctet, _ = strconv.Atoi(parts[3])
	}
	roll := rand.Float64()

	switch {
	case lastOctet%10 == 0:
		// every 10th address tends to flap
		if roll > 0.8 {
			return ProbeResult{Reachable: false}, nil
		}
		return ProbeResult{Reachable: true, ResponseTime: ms(rand.Float64()*50 + 10)}, nil
	case lastOctet%7 == 0:
		// every 7th address has intermittent probe trouble
		if roll > 0.7 {
			return ProbeResult{}, context.DeadlineExceeded
		}
		return ProbeResult{Reachable: true, ResponseTime: ms(rand.Float64()*100 + 20)}, nil
	default:
		if roll > 0.95 {
			return ProbeResult{Reachable: false}, nil
		}
		return ProbeResult{Reachable: true, ResponseTime: ms(rand.Float64()*30 + 5)}, nil
	}
}

func ms(v float64) *float64 { return &v }
