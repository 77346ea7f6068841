package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/me/audictl/pkg/model"
)

// AdminClient calls the admin endpoints with the session's bearer token.
type AdminClient struct {
	*Client
}

// NewAdminClient creates the admin channel.
func NewAdminClient(baseURL string, tokens TokenFunc, opts ...Option) *AdminClient {
	opts = append([]Option{WithHook(BearerHook(tokens))}, opts...)
	return &AdminClient{Client: newClient(baseURL, "admin", opts...)}
}

// ListAuditoriums returns every auditorium, active or not.
func (c *AdminClient) ListAuditoriums(ctx context.Context) ([]model.Auditorium, error) {
	var out []model.Auditorium
	if err := c.doJSON(ctx, http.MethodGet, "/auditoriums/getAll", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddAuditorium creates an auditorium.
func (c *AdminClient) AddAuditorium(ctx context.Context, a model.Auditorium) error {
	_, err := c.do(ctx, http.MethodPost, "/auditorium/add", a)
	return err
}

// UpdateAuditorium replaces an auditorium's fields.
func (c *AdminClient) UpdateAuditorium(ctx context.Context, id model.ID, a model.Auditorium) error {
	_, err := c.do(ctx, http.MethodPut, "/auditorium/update/"+url.PathEscape(id.String()), a)
	return err
}

// DeleteAuditorium removes an auditorium.
func (c *AdminClient) DeleteAuditorium(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodDelete, "/auditorium/delete/"+url.PathEscape(id.String()), nil)
	return err
}

// ListBookings returns all bookings.
func (c *AdminClient) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	if err := c.doJSON(ctx, http.MethodGet, "/bookings/getAll", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBookingStatus requests a status transition.
func (c *AdminClient) UpdateBookingStatus(ctx context.Context, id model.ID, status model.BookingStatus) error {
	_, err := c.do(ctx, http.MethodPut, "/status/"+url.PathEscape(id.String()), model.StatusUpdate{BookingStatus: status})
	return err
}

// ListUsers returns all registered users.
func (c *AdminClient) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/getAll", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DashboardStats returns aggregate counts.
func (c *AdminClient) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	if err := c.doJSON(ctx, http.MethodGet, "/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
