package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// Resource describes a reference-data collection upstream
type Resource struct {
	Name       string
	Path       string
	CreatePath string // defaults to Path
}

// Reference resources
var (
	Users     = Resource{Name: "users", Path: "/users", CreatePath: "/users/register"}
	Roles     = Resource{Name: "roles", Path: "/roles"}
	Statuses  = Resource{Name: "statuses", Path: "/status"}
	Leasings  = Resource{Name: "leasing", Path: "/leasing"}
	PICs      = Resource{Name: "pics", Path: "/pic"}
	Surveyors = Resource{Name: "surveyors", Path: "/surveyor"}
	Admins    = Resource{Name: "admins", Path: "/admin", CreatePath: "/admin/register"}
)

func (r Resource) createPath() string {
	if r.CreatePath != "" {
		return r.CreatePath
	}
	return r.Path
}

func (r Resource) itemPath(id string) string {
	return r.Path + "/" + url.PathEscape(id)
}

// List decodes the whole collection into out (a pointer to a slice)
func (c *Client) List(ctx context.Context, token string, res Resource, out any) error {
	_, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  res.Path,
		path:   res.Path,
		token:  token,
		out:    out,
	})
	return err
}

// Create posts a new item
func (c *Client) Create(ctx context.Context, token string, res Resource, body any) error {
	_, err := c.do(ctx, call{
		method:  http.MethodPost,
		route:   res.createPath(),
		path:    res.createPath(),
		token:   token,
		prepare: jsonBody(body),
	})
	return err
}

// Update replaces the item keyed by id
func (c *Client) Update(ctx context.Context, token string, res Resource, id string, body any) error {
	_, err := c.do(ctx, call{
		method:  http.MethodPut,
		route:   res.Path + "/{id}",
		path:    res.itemPath(id),
		token:   token,
		prepare: jsonBody(body),
	})
	return notFound(err)
}

// Delete removes the item keyed by id
func (c *Client) Delete(ctx context.Context, token string, res Resource, id string) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		route:  res.Path + "/{id}",
		path:   res.itemPath(id),
		token:  token,
	})
	return notFound(err)
}

func jsonBody(body any) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}
}
