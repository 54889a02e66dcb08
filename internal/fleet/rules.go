package fleet

import (
	"strconv"
	"strings"
	"time"

	"github.com/Lokii-git/vrpa-manager/internal/models"
)

// IsAvailable reports whether the device can be checked out right now.
// A device with no checkout on record, or whose last checkout was returned,
// is available.
func IsAvailable(d *models.Device) bool {
	return d.CurrentCheckout == nil || !d.CurrentCheckout.IsActive
}

// CanSchedule reports whether a future reservation starting at proposedStart
// may be accepted. Always true without an active checkout; otherwise the
// start must fall on or after the expected return date (boundary inclusive,
// no buffer day). The existing schedule is deliberately not consulted:
// single-slot model, a new schedule overwrites the old one.
func CanSchedule(d *models.Device, proposedStart time.Time) bool {
	if d.CurrentCheckout == nil || !d.CurrentCheckout.IsActive {
		return true
	}
	return !proposedStart.Before(d.CurrentCheckout.ExpectedReturnDate)
}

// IsValidIP accepts dotted-quad IPv4 only.
func IsValidIP(ip string) bool {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 {
			return false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// IPConflict reports whether ip is already used by a device other than
// excludeID. Flat uniqueness; editing a device keeps its own address valid.
func IPConflict(ip, excludeID string, devices []models.Device) bool {
	for i := range devices {
		if devices[i].IPAddress == ip && devices[i].ID != excludeID {
			return true
		}
	}
	return false
}
