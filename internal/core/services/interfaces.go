package services

import (
	"context"

	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/core/domain"
)

// Note: the concrete Upstream is *upstream.Client

// Upstream is the borrower-record REST API as seen by the services
type Upstream interface {
	Login(ctx context.Context, email, password string) (string, error)
	RegisterAdmin(ctx context.Context, admin domain.Admin) error

	ListRecords(ctx context.Context, token string) ([]domain.BorrowerRecord, error)
	GetRecord(ctx context.Context, token, id string) (*domain.BorrowerRecord, error)
	CreateRecord(ctx context.Context, token string, record *domain.BorrowerRecord, uploads []upstream.Upload) (*domain.BorrowerRecord, error)
	UpdateRecord(ctx context.Context, token, id string, record *domain.BorrowerRecord, uploads []upstream.Upload) (*domain.BorrowerRecord, error)
	DeleteRecord(ctx context.Context, token, id string) error
	Transition(ctx context.Context, token, id, endpoint string) error
	FetchDocument(ctx context.Context, token, rawURL string) ([]byte, string, error)

	List(ctx context.Context, token string, res upstream.Resource, out any) error
	Create(ctx context.Context, token string, res upstream.Resource, body any) error
	Update(ctx context.Context, token string, res upstream.Resource, id string, body any) error
	Delete(ctx context.Context, token string, res upstream.Resource, id string) error
}

var _ Upstream = (*upstream.Client)(nil)
