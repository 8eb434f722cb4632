package model

type Insurance struct {
	InsuranceID   int     `json:"insuranceID"`
	InsuranceType string  `json:"insuranceType"`
	Provider      string  `json:"provider"`
	PolicyNumber  string  `json:"policyNumber"`
	Coverage      string  `json:"coverage"`
	Premium       float64 `json:"premium"`
}
