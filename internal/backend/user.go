package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/session"
)

type Profile struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	Addresses []domain.Address `json:"addresses"`
}

type profileResponse struct {
	User Profile `json:"user"`
}

type addressesResponse struct {
	Addresses []domain.Address `json:"addresses"`
}

func (c *Client) GetProfile(ctx context.Context, s session.Session) (*Profile, error) {
	var resp profileResponse
	if err := c.do(ctx, "get profile", http.MethodGet, "/api/user/profile", s, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) AddAddress(ctx context.Context, s session.Session, a domain.Address) error {
	return c.do(ctx, "add address", http.MethodPost, "/api/user/address", s, a, nil)
}

func (c *Client) UpdateAddress(ctx context.Context, s session.Session, id string, a domain.Address) error {
	return c.do(ctx, "update address", http.MethodPut, "/api/user/address/"+url.PathEscape(id), s, a, nil)
}

func (c *Client) DeleteAddress(ctx context.Context, s session.Session, id string) ([]domain.Address, error) {
	var resp addressesResponse
	if err := c.do(ctx, "delete address", http.MethodDelete, "/api/user/address/"+url.PathEscape(id), s, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}
