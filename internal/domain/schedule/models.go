package schedule

import "time"

const (
	DayTypeWork       = "kerja"
	DayTypeOff        = "libur"
	DayTypeLeave      = "cuti"
	DayTypePermission = "izin"
)

var validDayTypes = map[string]bool{
	DayTypeWork:       true,
	DayTypeOff:        true,
	DayTypeLeave:      true,
	DayTypePermission: true,
}

func ValidDayType(dayType string) bool {
	return validDayTypes[dayType]
}

// DaysOfWeek is the canonical ordering used for listings.
var DaysOfWeek = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func ValidDayOfWeek(day string) bool {
	for _, d := range DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

type Entry struct {
	ID           string    `json:"id,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	UserName     string    `json:"userName,omitempty"`
	EmployeeID   string    `json:"employeeId,omitempty"`
	DayOfWeek    string    `json:"dayOfWeek"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	IsWorkingDay bool      `json:"isWorkingDay"`
	DayType      string    `json:"dayType"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// DefaultWeek is the schedule auto-created on first access: Monday through
// Friday 09:00-17:00 working days, weekends off.
func DefaultWeek() []Entry {
	entries := make([]Entry, 0, len(DaysOfWeek))
	for _, day := range DaysOfWeek {
		entry := Entry{
			DayOfWeek:    day,
			StartTime:    "09:00:00",
			EndTime:      "17:00:00",
			IsWorkingDay: true,
			DayType:      DayTypeWork,
		}
		if day == "saturday" || day == "sunday" {
			entry.IsWorkingDay = false
			entry.DayType = DayTypeOff
		}
		entries = append(entries, entry)
	}
	return entries
}
