package fleet

import (
	"sort"

	"github.com/Lokii-git/vrpa-manager/internal/models"
)

// GroupPingsByDay partitions pings by the UTC calendar date (YYYY-MM-DD) of
// their timestamp. Order within a day follows the input order.
func GroupPingsByDay(pings []models.PingRecord) map[string][]models.PingRecord {
	grouped := make(map[string][]models.PingRecord)
	for _, p := range pings {
		key := p.Timestamp.UTC().Format("2006-01-02")
		grouped[key] = append(grouped[key], p)
	}
	return grouped
}

// DailyUptime — percentage of pings classified online. 0 for an empty day,
// never a division by zero. Both offline and unknown count against uptime.
func DailyUptime(pings []models.PingRecord) float64 {
	if len(pings) == 0 {
		return 0
	}
	online := 0
	for _, p := range pings {
		if p.Status == models.StatusOnline {
			online++
		}
	}
	return float64(online) / float64(len(pings)) * 100
}

// UptimeHistory — one entry per distinct day in the input, ascending by date.
// ISO date strings sort lexicographically in chronological order.
func UptimeHistory(pings []models.PingRecord) []models.DeviceUptime {
	grouped := GroupPingsByDay(pings)
	history := make([]models.DeviceUptime, 0, len(grouped))
	for date, dayPings := range grouped {
		online := 0
		for _, p := range dayPings {
			if p.Status == models.StatusOnline {
				online++
			}
		}
		history = append(history, models.DeviceUptime{
			DeviceID:         dayPings[0].DeviceID,
			Date:             date,
			UptimePercentage: DailyUptime(dayPings),
			TotalPings:       len(dayPings),
			SuccessfulPings:  online,
		})
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Date < history[j].Date })
	return history
}

// OverallUptime — unweighted mean of the daily percentages. A day with two
// pings weighs the same as a day with two hundred; deliberate simplification.
func OverallUptime(history []models.DeviceUptime) float64 {
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, h := range history {
		sum += h.UptimePercentage
	}
	return sum / float64(len(history))
}
