package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopzone/storefront/internal/model"
)

type UserFilter struct {
	Search string
	Role   string
	Page   int
	Limit  int
}

type UserList struct {
	Users []model.User `json:"users"`
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
	Total int          `json:"total"`
}

func (f UserFilter) query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Role != "" {
		q.Set("role", f.Role)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// PageLink renders the filter as a relative query string for the given page,
// keeping the active search and role filters.
func (f UserFilter) PageLink(page int) string {
	f.Page = page
	f.Limit = 0
	return "?" + f.query().Encode()
}

func (c *Client) ListUsers(ctx context.Context, filter UserFilter) (*UserList, error) {
	var resp UserList
	if err := c.doJSON(ctx, http.MethodGet, "/users", filter.query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+id, nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id, role string) error {
	body := map[string]string{"role": role}
	return c.doJSON(ctx, http.MethodPut, "/users/"+id+"/role", nil, body, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/"+id, nil, nil, nil)
}

type UserStats struct {
	TotalUsers int `json:"totalUsers"`
	Admins     int `json:"admins"`
	Managers   int `json:"managers"`
	Customers  int `json:"users"`
}

func (c *Client) GetUserStats(ctx context.Context) (*UserStats, error) {
	var stats UserStats
	if err := c.doJSON(ctx, http.MethodGet, "/users/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
