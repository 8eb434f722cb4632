package model

import "fmt"

type TruckType struct {
	TruckTypeID int     `json:"truckTypeId"`
	TypeName    string  `json:"typeName"`
	Description string  `json:"description"`
	Capacity    float64 `json:"capacity"`
	FuelType    string  `json:"fuelType"`
	RatePerDay  float64 `json:"ratePerDay"`
}

type Truck struct {
	VIN            string     `json:"vin"`
	Make           string     `json:"make"`
	Model          string     `json:"model"`
	Year           int        `json:"year"`
	LicensePlate   string     `json:"licensePlate"`
	CurrentMileage int        `json:"currentMileage"`
	Availability   bool       `json:"availability"`
	TruckType      *TruckType `json:"truckType"`
}

// Title is the short label used on cards and receipts, e.g. "2021 Isuzu NPR 400".
func (t Truck) Title() string {
	if t.Year == 0 {
		return fmt.Sprintf("%s %s", t.Make, t.Model)
	}
	return fmt.Sprintf("%d %s %s", t.Year, t.Make, t.Model)
}

// RatePerDay returns the daily rate of the truck's type, or zero when untyped.
func (t Truck) RatePerDay() float64 {
	if t.TruckType == nil {
		return 0
	}
	return t.TruckType.RatePerDay
}
