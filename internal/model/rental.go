package model

import "time"

// DateLayout is the date format exchanged with the rental backend.
const DateLayout = "2006-01-02"

// Rental is a rented truck record.
type Rental struct {
	RentID        int        `json:"rentId"`
	RentDate      string     `json:"rentDate"`
	ReturnDate    string     `json:"returnDate"`
	TotalCost     float64    `json:"totalCost"`
	IsPaymentMade bool       `json:"isPaymentMade"`
	Customer      *Customer  `json:"customer"`
	Truck         *Truck     `json:"vin"`
	PickUp        *Branch    `json:"pickUp"`
	DropOff       *Branch    `json:"dropOff"`
	Insurance     *Insurance `json:"insurance,omitempty"`
}

// OwnedBy reports whether the rental belongs to the given customer.
func (r Rental) OwnedBy(customerID int) bool {
	return r.Customer != nil && r.Customer.CustomerID == customerID
}

// PendingPayment is a computed quote awaiting payment. It is cached server-side
// between the confirm-details and payment pages.
type PendingPayment struct {
	QuoteID       string     `json:"quoteID,omitempty"`
	CustomerID    int        `json:"customerID"`
	Truck         Truck      `json:"vin"`
	PickUp        Branch     `json:"pickUp"`
	DropOff       Branch     `json:"dropOff"`
	Insurance     *Insurance `json:"insurance,omitempty"`
	RentDate      string     `json:"rentDate"`
	ReturnDate    string     `json:"returnDate"`
	Days          int        `json:"days"`
	TotalCost     float64    `json:"totalCost"`
	PaymentAmount float64    `json:"paymentAmount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// BelongsTo reports whether the pending payment was made for customerID.
func (p *PendingPayment) BelongsTo(customerID int) bool {
	return p != nil && customerID != 0 && p.CustomerID == customerID
}
