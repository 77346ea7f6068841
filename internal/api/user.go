package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/me/audictl/pkg/model"
)

// UserClient calls the user endpoints with the session's bearer token.
type UserClient struct {
	*Client
}

// NewUserClient creates the user channel. tokens is consulted before every
// request.
func NewUserClient(baseURL string, tokens TokenFunc, opts ...Option) *UserClient {
	opts = append([]Option{WithHook(BearerHook(tokens))}, opts...)
	return &UserClient{Client: newClient(baseURL, "user", opts...)}
}

// ListAuditoriums returns every auditorium visible to users.
func (c *UserClient) ListAuditoriums(ctx context.Context) ([]model.Auditorium, error) {
	var out []model.Auditorium
	if err := c.doJSON(ctx, http.MethodGet, "/user/auditoriums/getAll", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAuditorium returns one auditorium.
func (c *UserClient) GetAuditorium(ctx context.Context, id model.ID) (*model.Auditorium, error) {
	var out model.Auditorium
	if err := c.doJSON(ctx, http.MethodGet, "/user/auditorium/get/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBooking submits a booking request. The server assigns status.
func (c *UserClient) CreateBooking(ctx context.Context, req model.BookingRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/user/bookings/create", req)
	return err
}

// ListBookings returns the caller's bookings.
func (c *UserClient) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	if err := c.doJSON(ctx, http.MethodGet, "/user/bookings/getAll", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelBooking asks the server to cancel one of the caller's bookings.
func (c *UserClient) CancelBooking(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodPut, "/user/bookings/cancel/"+url.PathEscape(id.String()), nil)
	return err
}
