package attendance

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// StatusForCheckIn classifies a check-in against the scheduled start time
// ("HH:MM" or "HH:MM:SS"). Checking in past the scheduled start is late; at
// or before it, or with no schedule entry at all, is present.
func StatusForCheckIn(checkIn time.Time, scheduledStart string) string {
	startMinutes, ok := parseClock(scheduledStart)
	if !ok {
		return StatusPresent
	}
	checkInMinutes := float64(checkIn.Hour()*60+checkIn.Minute()) + float64(checkIn.Second())/60
	if checkInMinutes > startMinutes {
		return StatusLate
	}
	return StatusPresent
}

// TotalHours is the worked duration in whole minutes converted to hours,
// rounded to two decimals. Sub-minute remainders are dropped, matching the
// minute-level resolution of the recorded times.
func TotalHours(checkIn, checkOut time.Time) float64 {
	minutes := checkOut.Sub(checkIn).Minutes()
	if minutes < 0 {
		minutes = 0
	}
	return math.Round(math.Floor(minutes)/60*100) / 100
}

// AppendNotes merges check-out notes onto existing notes without overwriting.
func AppendNotes(existing, added string) string {
	added = strings.TrimSpace(added)
	if added == "" {
		return existing
	}
	if existing == "" {
		return added
	}
	return existing + " | Check-out: " + added
}

func parseClock(value string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	seconds := 0
	if len(parts) > 2 {
		if seconds, err = strconv.Atoi(parts[2]); err != nil {
			return 0, false
		}
	}
	return float64(hours*60+minutes) + float64(seconds)/60, true
}
