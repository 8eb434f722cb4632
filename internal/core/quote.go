package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/edvin/swiftwheelz/internal/model"
)

var (
	ErrInvalidDates     = errors.New("invalid rental dates")
	ErrRentalTooLong    = errors.New("rental period too long")
	ErrTruckUnavailable = errors.New("truck is not available")
	ErrMissingBranch    = errors.New("pick-up and drop-off branches are required")
)

// QuoteRequest is the input of a price estimate.
type QuoteRequest struct {
	Truck      model.Truck
	PickUp     *model.Branch
	DropOff    *model.Branch
	Insurance  *model.Insurance
	RentDate   string
	ReturnDate string
}

// QuoteCalculator prices prospective rentals.
type QuoteCalculator struct {
	maxRentalDays  int
	depositPercent float64
}

func NewQuoteCalculator(maxRentalDays int, depositPercent float64) *QuoteCalculator {
	return &QuoteCalculator{maxRentalDays: maxRentalDays, depositPercent: depositPercent}
}

// Calculate prices req as of now. The result has no customer; it is bound to
// one when the customer confirms the details.
func (q *QuoteCalculator) Calculate(req QuoteRequest, now time.Time) (model.PendingPayment, error) {
	rent, err := time.Parse(model.DateLayout, req.RentDate)
	if err != nil {
		return model.PendingPayment{}, fmt.Errorf("%w: rent date is not a valid date", ErrInvalidDates)
	}
	ret, err := time.Parse(model.DateLayout, req.ReturnDate)
	if err != nil {
		return model.PendingPayment{}, fmt.Errorf("%w: return date is not a valid date", ErrInvalidDates)
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if rent.Before(today) {
		return model.PendingPayment{}, fmt.Errorf("%w: rent date cannot be in the past", ErrInvalidDates)
	}
	if !ret.After(rent) {
		return model.PendingPayment{}, fmt.Errorf("%w: return date must be after the rent date", ErrInvalidDates)
	}

	days := int(ret.Sub(rent).Hours() / 24)
	if days > q.maxRentalDays {
		return model.PendingPayment{}, fmt.Errorf("%w: at most %d days", ErrRentalTooLong, q.maxRentalDays)
	}

	rate := req.Truck.RatePerDay()
	if !req.Truck.Availability || rate <= 0 {
		return model.PendingPayment{}, ErrTruckUnavailable
	}
	if req.PickUp == nil || req.DropOff == nil {
		return model.PendingPayment{}, ErrMissingBranch
	}

	daily := rate
	if req.Insurance != nil {
		daily += req.Insurance.Premium
	}
	total := roundCents(float64(days) * daily)

	return model.PendingPayment{
		Truck:         req.Truck,
		PickUp:        *req.PickUp,
		DropOff:       *req.DropOff,
		Insurance:     req.Insurance,
		RentDate:      req.RentDate,
		ReturnDate:    req.ReturnDate,
		Days:          days,
		TotalCost:     total,
		PaymentAmount: roundCents(total * q.depositPercent / 100),
		CreatedAt:     now.UTC(),
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
