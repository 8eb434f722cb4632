package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/edvin/swiftwheelz/internal/model"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateCustomer registers a new customer account.
func (c *Client) CreateCustomer(ctx context.Context, customer model.Customer) (*model.Customer, error) {
	return doJSON[model.Customer](ctx, c, http.MethodPost, "/api/customer/create", customer)
}

// LoginCustomer verifies customer credentials. An empty reply means the
// credentials did not match and is reported as ErrUnauthorized.
func (c *Client) LoginCustomer(ctx context.Context, email, password string) (*model.Customer, error) {
	var customer model.Customer
	err := c.do(ctx, http.MethodPost, "/api/customer/login", nil, credentials{Email: email, Password: password}, &customer, ErrUnauthorized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &customer, nil
}

// GetCustomer returns a single customer by ID.
func (c *Client) GetCustomer(ctx context.Context, id int) (*model.Customer, error) {
	return get[model.Customer](ctx, c, "/api/customer/read/%s", id)
}

// UpdateCustomer replaces a customer's details.
func (c *Client) UpdateCustomer(ctx context.Context, customer model.Customer) (*model.Customer, error) {
	return doJSON[model.Customer](ctx, c, http.MethodPut, "/api/customer/update", customer)
}

// DeleteCustomer removes a customer account.
func (c *Client) DeleteCustomer(ctx context.Context, id int) error {
	return doNoBody(ctx, c, "/api/customer/delete/%s", id)
}
