package model

import "strings"

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

func (a Address) String() string {
	var parts []string
	for _, p := range []string{a.Street, a.City, a.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Branch struct {
	BranchID    int     `json:"branchId"`
	BranchName  string  `json:"branchName"`
	Address     Address `json:"address"`
	PhoneNumber string  `json:"phoneNumber"`
}
