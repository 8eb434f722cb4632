package backend

import (
	"context"
	"net/http"

	"github.com/edvin/swiftwheelz/internal/model"
)

// ListRentals returns every rented-truck record (admin view).
func (c *Client) ListRentals(ctx context.Context) ([]model.Rental, error) {
	return list[model.Rental](ctx, c, "/api/rentTruck/getall")
}

// ListRentalsByCustomer returns the rentals of one customer.
func (c *Client) ListRentalsByCustomer(ctx context.Context, customerID int) ([]model.Rental, error) {
	return list[model.Rental](ctx, c, "/api/rentTruck/customer/%s", customerID)
}

func (c *Client) GetRental(ctx context.Context, id int) (*model.Rental, error) {
	return get[model.Rental](ctx, c, "/api/rentTruck/read/%s", id)
}

func (c *Client) UpdateRental(ctx context.Context, r model.Rental) (*model.Rental, error) {
	return doJSON[model.Rental](ctx, c, http.MethodPut, "/api/rentTruck/update", r)
}

func (c *Client) DeleteRental(ctx context.Context, id int) error {
	return doNoBody(ctx, c, "/api/rentTruck/delete/%s", id)
}

// FinalizePayment submits a pending payment. The backend creates the rental
// record and the payment in one call and returns the rental.
func (c *Client) FinalizePayment(ctx context.Context, p model.PendingPayment) (*model.Rental, error) {
	return doJSON[model.Rental](ctx, c, http.MethodPost, "/api/payment/finalize", p)
}
