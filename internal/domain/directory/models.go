package directory

import "time"

type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	HODEmployeeID string    `json:"hodEmployeeId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	DepartmentID string    `json:"departmentId,omitempty"`
	JoiningDate  time.Time `json:"joiningDate"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Subject struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	DepartmentID string `json:"departmentId"`
}
