package backend

import (
	"context"
	"net/http"

	"github.com/edvin/swiftwheelz/internal/model"
)

// Trucks are keyed by VIN.

func (c *Client) ListTrucks(ctx context.Context) ([]model.Truck, error) {
	return list[model.Truck](ctx, c, "/api/truck/getall")
}

func (c *Client) GetTruck(ctx context.Context, vin string) (*model.Truck, error) {
	return get[model.Truck](ctx, c, "/api/truck/read/%s", vin)
}

func (c *Client) CreateTruck(ctx context.Context, t model.Truck) (*model.Truck, error) {
	return doJSON[model.Truck](ctx, c, http.MethodPost, "/api/truck/create", t)
}

func (c *Client) UpdateTruck(ctx context.Context, t model.Truck) (*model.Truck, error) {
	return doJSON[model.Truck](ctx, c, http.MethodPut, "/api/truck/update", t)
}

func (c *Client) DeleteTruck(ctx context.Context, vin string) error {
	return doNoBody(ctx, c, "/api/truck/delete/%s", vin)
}

func (c *Client) ListTruckTypes(ctx context.Context) ([]model.TruckType, error) {
	return list[model.TruckType](ctx, c, "/api/truckType/getall")
}

func (c *Client) GetTruckType(ctx context.Context, id int) (*model.TruckType, error) {
	return get[model.TruckType](ctx, c, "/api/truckType/read/%s", id)
}

func (c *Client) CreateTruckType(ctx context.Context, t model.TruckType) (*model.TruckType, error) {
	return doJSON[model.TruckType](ctx, c, http.MethodPost, "/api/truckType/create", t)
}

func (c *Client) UpdateTruckType(ctx context.Context, t model.TruckType) (*model.TruckType, error) {
	return doJSON[model.TruckType](ctx, c, http.MethodPut, "/api/truckType/update", t)
}

func (c *Client) DeleteTruckType(ctx context.Context, id int) error {
	return doNoBody(ctx, c, "/api/truckType/delete/%s", id)
}

func (c *Client) ListBranches(ctx context.Context) ([]model.Branch, error) {
	return list[model.Branch](ctx, c, "/api/branch/getall")
}

func (c *Client) GetBranch(ctx context.Context, id int) (*model.Branch, error) {
	return get[model.Branch](ctx, c, "/api/branch/read/%s", id)
}

func (c *Client) CreateBranch(ctx context.Context, b model.Branch) (*model.Branch, error) {
	return doJSON[model.Branch](ctx, c, http.MethodPost, "/api/branch/create", b)
}

func (c *Client) UpdateBranch(ctx context.Context, b model.Branch) (*model.Branch, error) {
	return doJSON[model.Branch](ctx, c, http.MethodPut, "/api/branch/update", b)
}

func (c *Client) DeleteBranch(ctx context.Context, id int) error {
	return doNoBody(ctx, c, "/api/branch/delete/%s", id)
}

func (c *Client) ListInsurances(ctx context.Context) ([]model.Insurance, error) {
	return list[model.Insurance](ctx, c, "/api/insurance/getall")
}

func (c *Client) GetInsurance(ctx context.Context, id int) (*model.Insurance, error) {
	return get[model.Insurance](ctx, c, "/api/insurance/read/%s", id)
}

func (c *Client) CreateInsurance(ctx context.Context, i model.Insurance) (*model.Insurance, error) {
	return doJSON[model.Insurance](ctx, c, http.MethodPost, "/api/insurance/create", i)
}

func (c *Client) UpdateInsurance(ctx context.Context, i model.Insurance) (*model.Insurance, error) {
	return doJSON[model.Insurance](ctx, c, http.MethodPut, "/api/insurance/update", i)
}

func (c *Client) DeleteInsurance(ctx context.Context, id int) error {
	return doNoBody(ctx, c, "/api/insurance/delete/%s", id)
}
