package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus(t *testing.T) {
	assert.Equal(t, StatusPaid, Rental{IsPaymentMade: true}.PaymentStatus())
	assert.Equal(t, StatusUnpaid, Rental{}.PaymentStatus())
}

func TestFilterRentalsByStatus(t *testing.T) {
	rentals := []Rental{
		{RentID: 1, IsPaymentMade: true},
		{RentID: 2},
		{RentID: 3, IsPaymentMade: true},
	}

	paid := FilterRentalsByStatus(rentals, StatusPaid)
	assert.Len(t, paid, 2)
	assert.Equal(t, 1, paid[0].RentID)
	assert.Equal(t, 3, paid[1].RentID)

	unpaid := FilterRentalsByStatus(rentals, StatusUnpaid)
	assert.Len(t, unpaid, 1)
	assert.Equal(t, 2, unpaid[0].RentID)

	assert.Len(t, FilterRentalsByStatus(rentals, ""), 3)
	assert.Empty(t, FilterRentalsByStatus(rentals, "bogus"))
}
