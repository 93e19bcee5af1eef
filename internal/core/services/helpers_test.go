package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"daterbo-console/internal/adapters/persistence/repositories"
	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/core/domain"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func makeToken(t *testing.T, sub, role, userID string, exp time.Time) string {
	t.Helper()
	claims := jwtlib.MapClaims{"sub": sub, "role": role}
	if userID != "" {
		claims["iduser"] = userID
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("not-the-upstream-secret"))
	require.NoError(t, err)
	return s
}

func newTestSession(t *testing.T, store repositories.TokenStore, role, userID string) *Session {
	t.Helper()
	if store == nil {
		store = repositories.NewMemoryTokenStore()
	}
	sess := NewSession(store, TokenKey, time.Hour, nil, zap.NewNop())
	_, err := sess.Adopt(context.Background(), makeToken(t, userID+"@daterbo.id", role, userID, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	return sess
}

// fakeUpstream is an in-memory Upstream
type fakeUpstream struct {
	mu sync.Mutex

	token     string
	records   []domain.BorrowerRecord
	statuses  []domain.Status
	leasings  []domain.Leasing
	users     []domain.User
	pics      []domain.PIC
	surveyors []domain.Surveyor
	documents map[string][]byte

	errs  map[string]error
	calls []string

	// blockFirstList makes the first ListRecords wait for its context
	blockFirstList bool
	entered        chan struct{}
	listCalls      int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		token: "issued-token",
		statuses: []domain.Status{
			{ID: "S001", Name: "BARU"},
			{ID: "S002", Name: "PROSES PENCARIAN"},
			{ID: "S003", Name: "CAIR"},
			{ID: "S004", Name: "BATAL"},
			{ID: "S005", Name: "DATA LENGKAP"},
		},
		leasings:  []domain.Leasing{{ID: "L1", Name: "Adira"}},
		documents: map[string][]byte{},
		errs:      map[string]error{},
		entered:   make(chan struct{}, 1),
	}
}

func (f *fakeUpstream) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeUpstream) called(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == op {
			return true
		}
	}
	return false
}

func (f *fakeUpstream) Login(_ context.Context, email, password string) (string, error) {
	if err := f.record("Login"); err != nil {
		return "", err
	}
	return f.token, nil
}

func (f *fakeUpstream) RegisterAdmin(_ context.Context, admin domain.Admin) error {
	return f.record("RegisterAdmin")
}

func (f *fakeUpstream) ListRecords(ctx context.Context, token string) ([]domain.BorrowerRecord, error) {
	f.mu.Lock()
	f.listCalls++
	block := f.blockFirstList && f.listCalls == 1
	f.mu.Unlock()

	if block {
		f.entered <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.record("ListRecords"); err != nil {
		return nil, err
	}
	return append([]domain.BorrowerRecord(nil), f.records...), nil
}

func (f *fakeUpstream) GetRecord(_ context.Context, token, id string) (*domain.BorrowerRecord, error) {
	if err := f.record("GetRecord"); err != nil {
		return nil, err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func (f *fakeUpstream) CreateRecord(_ context.Context, token string, record *domain.BorrowerRecord, uploads []upstream.Upload) (*domain.BorrowerRecord, error) {
	if err := f.record("CreateRecord"); err != nil {
		return nil, err
	}
	out := *record
	out.ID = "NEW"
	return &out, nil
}

func (f *fakeUpstream) UpdateRecord(_ context.Context, token, id string, record *domain.BorrowerRecord, uploads []upstream.Upload) (*domain.BorrowerRecord, error) {
	if err := f.record("UpdateRecord"); err != nil {
		return nil, err
	}
	return record, nil
}

func (f *fakeUpstream) DeleteRecord(_ context.Context, token, id string) error {
	return f.record("DeleteRecord")
}

func (f *fakeUpstream) Transition(_ context.Context, token, id, endpoint string) error {
	return f.record("Transition:" + endpoint)
}

func (f *fakeUpstream) FetchDocument(_ context.Context, token, rawURL string) ([]byte, string, error) {
	if err := f.record("FetchDocument:" + rawURL); err != nil {
		return nil, "", err
	}
	data, ok := f.documents[rawURL]
	if !ok {
		return nil, "", &domain.RejectedError{StatusCode: 404}
	}
	return data, "image/png", nil
}

func (f *fakeUpstream) List(_ context.Context, token string, res upstream.Resource, out any) error {
	if err := f.record("List:" + res.Name); err != nil {
		return err
	}
	switch v := out.(type) {
	case *[]domain.Status:
		*v = f.statuses
	case *[]domain.Leasing:
		*v = f.leasings
	case *[]domain.User:
		*v = f.users
	case *[]domain.PIC:
		*v = f.pics
	case *[]domain.Surveyor:
		*v = f.surveyors
	case *[]domain.RoleRef:
		*v = []domain.RoleRef{{ID: "R001", Name: "Admin"}}
	case *[]domain.Admin:
		*v = []domain.Admin{{Name: "Root", Email: "root@daterbo.id"}}
	}
	return nil
}

func (f *fakeUpstream) Create(_ context.Context, token string, res upstream.Resource, body any) error {
	return f.record("Create:" + res.Name)
}

func (f *fakeUpstream) Update(_ context.Context, token string, res upstream.Resource, id string, body any) error {
	return f.record("Update:" + res.Name + ":" + id)
}

func (f *fakeUpstream) Delete(_ context.Context, token string, res upstream.Resource, id string) error {
	return f.record("Delete:" + res.Name + ":" + id)
}
