package attendance

import "time"

const (
	StatusPresent   = "present"
	StatusLate      = "late"
	StatusAbsent    = "absent"
	StatusHalfDay   = "half_day"
	StatusSickLeave = "sick_leave"
	StatusVacation  = "vacation"
)

type Record struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	UserName     string     `json:"userName,omitempty"`
	EmployeeID   string     `json:"employeeId,omitempty"`
	Date         time.Time  `json:"date"`
	CheckInTime  *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	TotalHours   *float64   `json:"totalHours,omitempty"`
	Status       string     `json:"status"`
	Location     string     `json:"location,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
