package model

// Rental payment status values, as used by the rented-trucks filter.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// PaymentStatus returns StatusPaid or StatusUnpaid for the rental.
func (r Rental) PaymentStatus() string {
	if r.IsPaymentMade {
		return StatusPaid
	}
	return StatusUnpaid
}

// FilterRentalsByStatus keeps rentals whose payment status equals status.
// An empty status returns the input unchanged.
func FilterRentalsByStatus(rentals []Rental, status string) []Rental {
	if status == "" {
		return rentals
	}
	out := make([]Rental, 0, len(rentals))
	for _, r := range rentals {
		if r.PaymentStatus() == status {
			out = append(out, r)
		}
	}
	return out
}
