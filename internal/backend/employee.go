package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/edvin/swiftwheelz/internal/model"
)

// LoginEmployee verifies employee credentials for the admin portal.
func (c *Client) LoginEmployee(ctx context.Context, email, password string) (*model.Employee, error) {
	var employee model.Employee
	err := c.do(ctx, http.MethodPost, "/api/employee/login", nil, credentials{Email: email, Password: password}, &employee, ErrUnauthorized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &employee, nil
}

func (c *Client) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return list[model.Employee](ctx, c, "/api/employee/getall")
}

func (c *Client) GetEmployee(ctx context.Context, id int) (*model.Employee, error) {
	return get[model.Employee](ctx, c, "/api/employee/read/%s", id)
}

func (c *Client) CreateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error) {
	return doJSON[model.Employee](ctx, c, http.MethodPost, "/api/employee/create", e)
}

func (c *Client) UpdateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error) {
	return doJSON[model.Employee](ctx, c, http.MethodPut, "/api/employee/update", e)
}

func (c *Client) DeleteEmployee(ctx context.Context, id int) error {
	return doNoBody(ctx, c, "/api/employee/delete/%s", id)
}
