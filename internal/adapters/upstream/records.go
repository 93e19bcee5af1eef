package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"daterbo-console/internal/core/domain"

	"github.com/go-resty/resty/v2"
)

const recordsPath = "/datapeminjam"

// Transition endpoints, appended to /datapeminjam/{id}
const (
	TransitionComplete = "datalengkap"
	TransitionProcess  = "proses"
	TransitionDisburse = "cair"
	TransitionCancel   = "batal"
)

// Upload is one supporting document sent with a record write
type Upload struct {
	Kind     domain.DocumentKind
	FileName string
	Reader   io.Reader
}

func recordPath(id string) string {
	return recordsPath + "/" + url.PathEscape(id)
}

// ListRecords fetches every borrower record visible to the token
func (c *Client) ListRecords(ctx context.Context, token string) ([]domain.BorrowerRecord, error) {
	var out []domain.BorrowerRecord
	_, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  recordsPath,
		path:   recordsPath,
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecord fetches one borrower record
func (c *Client) GetRecord(ctx context.Context, token, id string) (*domain.BorrowerRecord, error) {
	var out domain.BorrowerRecord
	_, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  recordsPath + "/{id}",
		path:   recordPath(id),
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// CreateRecord submits a new record as multipart: a "data" JSON field plus one file field per document
func (c *Client) CreateRecord(ctx context.Context, token string, record *domain.BorrowerRecord, uploads []Upload) (*domain.BorrowerRecord, error) {
	return c.writeRecord(ctx, token, http.MethodPost, recordsPath, recordsPath, record, uploads)
}

// UpdateRecord replaces a record; documents not uploaded are left unchanged upstream
func (c *Client) UpdateRecord(ctx context.Context, token, id string, record *domain.BorrowerRecord, uploads []Upload) (*domain.BorrowerRecord, error) {
	rec, err := c.writeRecord(ctx, token, http.MethodPut, recordsPath+"/{id}", recordPath(id), record, uploads)
	return rec, notFound(err)
}

func (c *Client) writeRecord(ctx context.Context, token, method, route, path string, record *domain.BorrowerRecord, uploads []Upload) (*domain.BorrowerRecord, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	var out domain.BorrowerRecord
	_, err = c.do(ctx, call{
		method: method,
		route:  route,
		path:   path,
		token:  token,
		prepare: func(r *resty.Request) {
			r.SetMultipartFormData(map[string]string{"data": string(payload)})
			for _, u := range uploads {
				r.SetFileReader(string(u.Kind), u.FileName, u.Reader)
			}
		},
		out: &out,
	})
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		// some endpoints answer with a bare message; fall back to what was sent
		return record, nil
	}
	return &out, nil
}

// DeleteRecord removes a record
func (c *Client) DeleteRecord(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		route:  recordsPath + "/{id}",
		path:   recordPath(id),
		token:  token,
	})
	return notFound(err)
}

// Transition moves a record along its lifecycle via one of the Transition* endpoints
func (c *Client) Transition(ctx context.Context, token, id, endpoint string) error {
	_, err := c.do(ctx, call{
		method: http.MethodPut,
		route:  recordsPath + "/{id}/" + endpoint,
		path:   recordPath(id) + "/" + endpoint,
		token:  token,
	})
	return notFound(err)
}

// FetchDocument downloads a document image with the bearer token.
// rawURL may be absolute or relative to the API base URL.
func (c *Client) FetchDocument(ctx context.Context, token, rawURL string) ([]byte, string, error) {
	resp, err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "document",
		path:   rawURL,
		token:  token,
		prepare: func(r *resty.Request) {
			r.SetHeader("Accept", "image/*")
		},
	})
	if err != nil {
		return nil, "", err
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// notFound maps an upstream 404 onto domain.ErrNotFound, keeping other errors as they are
func notFound(err error) error {
	var rejected *domain.RejectedError
	if errors.As(err, &rejected) && rejected.IsNotFound() {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, rejected.Error())
	}
	return err
}
