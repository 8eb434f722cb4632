package model

import "strings"

type Customer struct {
	CustomerID int    `json:"customerID"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password,omitempty"`
	License    string `json:"license"`
	CellNo     string `json:"cellNo"`
}

// FullName joins first and last name, skipping empty parts.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
