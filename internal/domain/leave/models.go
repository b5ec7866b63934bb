package leave

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	TypeSick      = "sick"
	TypeVacation  = "vacation"
	TypePersonal  = "personal"
	TypeEmergency = "emergency"
	TypeMaternity = "maternity"
	TypePaternity = "paternity"
)

var validTypes = map[string]bool{
	TypeSick:      true,
	TypeVacation:  true,
	TypePersonal:  true,
	TypeEmergency: true,
	TypeMaternity: true,
	TypePaternity: true,
}

func ValidType(leaveType string) bool {
	return validTypes[leaveType]
}

var validStatuses = map[string]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

func ValidStatus(status string) bool {
	return validStatuses[status]
}

type Request struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	UserName        string     `json:"user_name,omitempty"`
	EmployeeID      string     `json:"employee_id,omitempty"`
	Department      string     `json:"department,omitempty"`
	LeaveType       string     `json:"leave_type"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	DaysRequested   int        `json:"days_requested"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	ApprovedByName  string     `json:"approved_by_name,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *string    `json:"rejected_by,omitempty"`
	RejectedByName  string     `json:"rejected_by_name,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
