package backend

import (
	"context"
	"net/http"

	"github.com/edvin/swiftwheelz/internal/model"
)

func (c *Client) SubmitContactMessage(ctx context.Context, m model.ContactMessage) (*model.ContactMessage, error) {
	return doJSON[model.ContactMessage](ctx, c, http.MethodPost, "/api/contactUs/create", m)
}

func (c *Client) ListContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	return list[model.ContactMessage](ctx, c, "/api/contactUs/getall")
}

func (c *Client) DeleteContactMessage(ctx context.Context, id int) error {
	return doNoBody(ctx, c, "/api/contactUs/delete/%s", id)
}
