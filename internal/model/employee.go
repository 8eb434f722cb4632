package model

import "strings"

// Role is an employee role as defined by the rental backend.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleRentalAgent Role = "RENTAL_AGENT"
	RoleMechanic    Role = "MECHANIC"
	RoleHelpDesk    Role = "HELP_DESK"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleRentalAgent, RoleMechanic, RoleHelpDesk}

// DisplayName returns the human readable role name.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleRentalAgent:
		return "Rental Agent"
	case RoleMechanic:
		return "Mechanic"
	case RoleHelpDesk:
		return "Help Desk"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type Employee struct {
	EmployeeNumber int    `json:"employeeNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Password       string `json:"password,omitempty"`
	Role           Role   `json:"role"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
