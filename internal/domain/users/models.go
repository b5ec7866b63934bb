package users

import "time"

type User struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Department string     `json:"department,omitempty"`
	Position   string     `json:"position,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Address    string     `json:"address,omitempty"`
	HireDate   *time.Time `json:"hireDate,omitempty"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`

	// Current-month attendance counters for the admin listing.
	TotalAttendance int `json:"totalAttendance"`
	PresentCount    int `json:"presentCount"`
	LateCount       int `json:"lateCount"`
}

type Update struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Password   *string `json:"password"`
}
