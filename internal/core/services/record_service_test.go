package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"daterbo-console/internal/adapters/persistence/repositories"
	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/core/actions"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededUpstream(t *testing.T) *fakeUpstream {
	f := newFakeUpstream()
	day := func(s string) domain.Date {
		d, err := domain.ParseDate(s)
		require.NoError(t, err)
		return d
	}
	f.records = []domain.BorrowerRecord{
		{ID: "P1", NIK: "3201", Name: "Budi", Phone: "0812-111", User: &domain.User{ID: "U1", Email: "U1@daterbo.id"},
			Status: &domain.Status{ID: "S001", Name: "BARU"}, Leasing: &domain.Leasing{ID: "L1", Name: "Adira"}, InputDate: day("2024-05-01")},
		{ID: "P2", NIK: "3202", Name: "Sari", User: &domain.User{ID: "U2", Email: "U2@daterbo.id"},
			Status: &domain.Status{ID: "S002", Name: "PROSES PENCARIAN"}, InputDate: day("2024-05-02"),
			Notes: strings.Repeat("a", 120)},
		{ID: "P3", NIK: "3203", Name: "Budiman", User: &domain.User{ID: "U1", Email: "U1@daterbo.id"},
			Status: &domain.Status{ID: "S005", Name: "DATA LENGKAP"}, InputDate: day("2024-05-01")},
	}
	return f
}

func newRecordService(f *fakeUpstream) *RecordService {
	return NewRecordService(f, NewWorkspaceLoader(f, NewRequestGate(), zap.NewNop()), zap.NewNop())
}

func TestRecordService_ListNarrowStaff(t *testing.T) {
	f := seededUpstream(t)
	svc := newRecordService(f)
	sess := newTestSession(t, nil, "R003", "U1")

	view, err := svc.List(context.Background(), sess, filter.Criteria{Status: filter.All()})
	require.NoError(t, err)

	require.Len(t, view.Rows, 2)
	assert.Equal(t, "P1", view.Rows[0].ID)
	assert.Equal(t, "P3", view.Rows[1].ID)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, view.Counts["BARU"])
	assert.Equal(t, 0, view.Counts["PROSES PENCARIAN"])
	assert.False(t, view.CanViewAll)
	assert.Equal(t, "https://wa.me/62812111", view.Rows[0].WhatsAppLink)
	assert.Empty(t, view.Rows[1].WhatsAppLink)

	// narrow staff never load the user list
	assert.False(t, f.called("List:users"))
	for _, s := range view.AssignableStatuses {
		assert.NotEqual(t, "CAIR", s.Name)
	}
}

func TestRecordService_ListBroadStaff(t *testing.T) {
	f := seededUpstream(t)
	svc := newRecordService(f)
	sess := newTestSession(t, nil, "R002", "U9")

	view, err := svc.List(context.Background(), sess, filter.Criteria{
		Search: "budi",
		Status: filter.All(),
	})
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)
	assert.True(t, f.called("List:users"))

	view, err = svc.List(context.Background(), sess, filter.Criteria{Status: filter.Only("PROSES PENCARIAN")})
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	row := view.Rows[0]
	assert.Equal(t, "P2", row.ID)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, strings.Repeat("a", 100)+"...", row.NotesPreview)
	assert.Equal(t, []ActionView{
		{Action: actions.View, Label: "Detail"},
		{Action: actions.Update, Label: "Update"},
		{Action: actions.Disburse, Label: "Cair"},
	}, row.Actions)
}

func TestRecordService_UnauthorizedEndsSession(t *testing.T) {
	f := seededUpstream(t)
	f.errs["List:leasing"] = domain.ErrUnauthorized
	svc := newRecordService(f)
	sess := newTestSession(t, nil, "R001", "U1")

	_, err := svc.List(context.Background(), sess, filter.Criteria{Status: filter.All()})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, sess.Authenticated())

	_, err = svc.List(context.Background(), sess, filter.Criteria{Status: filter.All()})
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestWorkspaceLoader_SupersededLoad(t *testing.T) {
	f := seededUpstream(t)
	f.blockFirstList = true
	loader := NewWorkspaceLoader(f, NewRequestGate(), zap.NewNop())
	sess := newTestSession(t, nil, "R001", "U1")

	firstErr := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), sess)
		firstErr <- err
	}()

	select {
	case <-f.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first load never started")
	}

	ws, err := loader.Load(context.Background(), sess)
	require.NoError(t, err)
	assert.Len(t, ws.Records, 3)
	assert.ErrorIs(t, <-firstErr, domain.ErrSuperseded)
	assert.True(t, sess.Authenticated())
}

func TestWorkspaceLoader_EphemeralSessionsDoNotSupersedeEachOther(t *testing.T) {
	f := seededUpstream(t)
	f.blockFirstList = true
	loader := NewWorkspaceLoader(f, NewRequestGate(), zap.NewNop())
	mgr := NewSessionManager(repositories.NewMemoryTokenStore(), time.Hour, nil, zap.NewNop())

	alice := mgr.Ephemeral()
	_, err := alice.Adopt(context.Background(), makeToken(t, "alice@daterbo.id", "R002", "U1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	bob := mgr.Ephemeral()
	_, err = bob.Adopt(context.Background(), makeToken(t, "bob@daterbo.id", "R002", "U2", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.NotEqual(t, alice.Key(), bob.Key())

	aliceCtx, cancelAlice := context.WithCancel(context.Background())
	defer cancelAlice()
	aliceErr := make(chan error, 1)
	go func() {
		_, err := loader.Load(aliceCtx, alice)
		aliceErr <- err
	}()

	select {
	case <-f.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first load never started")
	}

	ws, err := loader.Load(context.Background(), bob)
	require.NoError(t, err)
	assert.Len(t, ws.Records, 3)

	select {
	case err := <-aliceErr:
		t.Fatalf("other client's load ended early: %v", err)
	default:
	}

	cancelAlice()
	err = <-aliceErr
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrSuperseded)
	assert.True(t, alice.Authenticated())
}

func TestRecordService_DetailScope(t *testing.T) {
	f := seededUpstream(t)
	svc := newRecordService(f)
	ctx := context.Background()

	narrow := newTestSession(t, nil, "R003", "U1")
	_, err := svc.Detail(ctx, narrow, "P2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	detail, err := svc.Detail(ctx, narrow, "P1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", detail.Record.Name)
	assert.Len(t, detail.Actions, 3)

	admin := newTestSession(t, nil, "R001", "U7")
	detail, err = svc.Detail(ctx, admin, "P2")
	require.NoError(t, err)
	assert.Len(t, detail.Actions, 5)
}

func TestRecordService_Transition(t *testing.T) {
	f := seededUpstream(t)
	svc := newRecordService(f)
	ctx := context.Background()
	staff := newTestSession(t, nil, "R002", "U5")
	admin := newTestSession(t, nil, "R001", "U7")

	// S002 offers disburse, not cancel, to staff
	require.NoError(t, svc.Transition(ctx, staff, "P2", actions.Disburse))
	assert.True(t, f.called("Transition:"+upstream.TransitionDisburse))

	err := svc.Transition(ctx, staff, "P2", actions.Cancel)
	assert.ErrorIs(t, err, domain.ErrActionNotOffered)
	assert.False(t, f.called("Transition:"+upstream.TransitionCancel))

	require.NoError(t, svc.Transition(ctx, admin, "P2", actions.Cancel))
	assert.True(t, f.called("Transition:"+upstream.TransitionCancel))

	err = svc.Transition(ctx, admin, "P1", actions.Process)
	assert.ErrorIs(t, err, domain.ErrActionNotOffered)

	err = svc.Transition(ctx, admin, "P1", actions.Delete)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestRecordService_TransitionRejectedUpstream(t *testing.T) {
	f := seededUpstream(t)
	f.errs["Transition:"+upstream.TransitionComplete] = &domain.RejectedError{StatusCode: 422, Message: "dokumen belum lengkap"}
	svc := newRecordService(f)
	sess := newTestSession(t, nil, "R001", "U1")

	err := svc.Transition(context.Background(), sess, "P1", actions.MarkComplete)
	var rejected *domain.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "dokumen belum lengkap", rejected.Message)
	assert.True(t, sess.Authenticated())
}

func TestRecordService_CreateValidation(t *testing.T) {
	f := seededUpstream(t)
	svc := newRecordService(f)
	ctx := context.Background()
	staff := newTestSession(t, nil, "R003", "U1")

	_, err := svc.Create(ctx, staff, RecordInput{Name: "Budi"}, nil)
	assert.ErrorIs(t, err, domain.ErrRequiredField)
	assert.Contains(t, err.Error(), "nik")

	_, err = svc.Create(ctx, staff, RecordInput{NIK: "3209"}, nil)
	assert.ErrorIs(t, err, domain.ErrRequiredField)

	_, err = svc.Create(ctx, staff, RecordInput{NIK: "3209", Name: "Eka", StatusID: "S003"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, f.called("CreateRecord"))

	rec, err := svc.Create(ctx, staff, RecordInput{NIK: " 3209 ", Name: "Eka", StatusID: "S001"}, []upstream.Upload{
		{Kind: domain.DocKTP, FileName: "ktp.jpg", Reader: strings.NewReader("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "NEW", rec.ID)
	assert.Equal(t, "3209", rec.NIK)
	assert.Equal(t, "U1", rec.UserID())
}

func TestRecordService_Delete(t *testing.T) {
	f := seededUpstream(t)
	svc := newRecordService(f)
	ctx := context.Background()

	err := svc.Delete(ctx, newTestSession(t, nil, "R002", "U5"), "P1")
	assert.ErrorIs(t, err, domain.ErrActionNotOffered)
	assert.False(t, f.called("DeleteRecord"))

	require.NoError(t, svc.Delete(ctx, newTestSession(t, nil, "R001", "U7"), "P1"))
	assert.True(t, f.called("DeleteRecord"))
}

func TestRecordService_Document(t *testing.T) {
	f := seededUpstream(t)
	f.records[0].PhotoKTP = "http://files/ktp.png"
	f.documents["http://files/ktp.png"] = []byte("png")
	svc := newRecordService(f)
	sess := newTestSession(t, nil, "R001", "U1")

	body, ctype, err := svc.Document(context.Background(), sess, "P1", domain.DocKTP)
	require.NoError(t, err)
	assert.Equal(t, "png", string(body))
	assert.Equal(t, "image/png", ctype)

	_, _, err = svc.Document(context.Background(), sess, "P1", domain.DocBPKB)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotesPreview(t *testing.T) {
	assert.Equal(t, "pendek", NotesPreview("pendek"))
	assert.Equal(t, strings.Repeat("é", 100), NotesPreview(strings.Repeat("é", 100)))
	assert.Equal(t, strings.Repeat("é", 100)+"...", NotesPreview(strings.Repeat("é", 101)))
}
