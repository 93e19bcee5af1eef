package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/core/actions"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/filter"
	"daterbo-console/internal/pkg/phone"

	"go.uber.org/zap"
)

// NotesPreviewLen is the number of characters of notes shown in the list
const NotesPreviewLen = 100

// transitionEndpoints maps lifecycle actions to their upstream endpoints
var transitionEndpoints = map[actions.Action]string{
	actions.MarkComplete: upstream.TransitionComplete,
	actions.Process:      upstream.TransitionProcess,
	actions.Disburse:     upstream.TransitionDisburse,
	actions.Cancel:       upstream.TransitionCancel,
}

// ActionView is a permitted action as offered in menus
type ActionView struct {
	Action actions.Action `json:"action"`
	Label  string         `json:"label"`
}

// RecordRow is one row of the list view
type RecordRow struct {
	domain.BorrowerRecord
	Actions      []ActionView `json:"actions"`
	WhatsAppLink string       `json:"whatsapp_link,omitempty"`
	NotesPreview string       `json:"notes_preview"`
}

// ListView is the record list page: rows, status tabs and filter options
type ListView struct {
	Rows               []RecordRow       `json:"rows"`
	Counts             map[string]int    `json:"counts"`
	Total              int               `json:"total"`
	DatesWithData      []domain.Day      `json:"dates_with_data"`
	Statuses           []domain.Status   `json:"statuses"`
	AssignableStatuses []domain.Status   `json:"assignable_statuses"`
	Leasings           []domain.Leasing  `json:"leasings"`
	Users              []domain.User     `json:"users,omitempty"`
	PICs               []domain.PIC      `json:"pics"`
	Surveyors          []domain.Surveyor `json:"surveyors"`
	CanViewAll         bool              `json:"can_view_all"`

	Result filter.Result `json:"-"`
}

// RecordDetail is the single-record page
type RecordDetail struct {
	Record       *domain.BorrowerRecord `json:"record"`
	Actions      []ActionView           `json:"actions"`
	WhatsAppLink string                 `json:"whatsapp_link,omitempty"`
	Documents    []domain.Document      `json:"documents"`
}

// RecordInput is the record form
type RecordInput struct {
	NIK          string      `json:"nik"`
	Name         string      `json:"namapeminjam"`
	Phone        string      `json:"nohp"`
	Asset        string      `json:"aset"`
	AssetYear    string      `json:"tahunaset"`
	Address      string      `json:"alamat"`
	City         string      `json:"kota"`
	District     string      `json:"kecamatan"`
	Notes        string      `json:"keterangan"`
	UserID       string      `json:"iduser"`
	StatusID     string      `json:"idstatus"`
	LeasingID    string      `json:"idleasing"`
	PICID        string      `json:"idpic"`
	SurveyorID   string      `json:"idsurveyor"`
	InputDate    domain.Date `json:"tglinput"`
	ReceiptDate  domain.Date `json:"tglpenerimaan"`
	DisburseDate domain.Date `json:"tglpencairan"`
}

// Validate checks required fields
func (in *RecordInput) Validate() error {
	if strings.TrimSpace(in.NIK) == "" {
		return domain.MissingField("nik")
	}
	if strings.TrimSpace(in.Name) == "" {
		return domain.MissingField("namapeminjam")
	}
	return nil
}

func (in *RecordInput) toRecord() *domain.BorrowerRecord {
	rec := &domain.BorrowerRecord{
		NIK:          strings.TrimSpace(in.NIK),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Asset:        in.Asset,
		AssetYear:    in.AssetYear,
		Address:      in.Address,
		City:         in.City,
		District:     in.District,
		Notes:        in.Notes,
		InputDate:    in.InputDate,
		ReceiptDate:  in.ReceiptDate,
		DisburseDate: in.DisburseDate,
	}
	if in.UserID != "" {
		rec.User = &domain.User{ID: in.UserID}
	}
	if in.StatusID != "" {
		rec.Status = &domain.Status{ID: in.StatusID}
	}
	if in.LeasingID != "" {
		rec.Leasing = &domain.Leasing{ID: in.LeasingID}
	}
	if in.PICID != "" {
		rec.PIC = &domain.PIC{ID: in.PICID}
	}
	if in.SurveyorID != "" {
		rec.Surveyor = &domain.Surveyor{ID: in.SurveyorID}
	}
	return rec
}

// RecordService serves the borrower-record pages
type RecordService struct {
	api    Upstream
	loader *WorkspaceLoader
	logger *zap.Logger
}

// NewRecordService creates a record service
func NewRecordService(api Upstream, loader *WorkspaceLoader, logger *zap.Logger) *RecordService {
	return &RecordService{api: api, loader: loader, logger: logger}
}

// List loads the workspace and derives the list view for criteria
func (s *RecordService) List(ctx context.Context, sess *Session, c filter.Criteria) (*ListView, error) {
	ws, err := s.loader.Load(ctx, sess)
	if err != nil {
		return nil, err
	}
	id := sess.Identity()

	res := filter.Apply(ws.Records, c, id, ws.Statuses)
	rows := make([]RecordRow, 0, len(res.Display))
	for i := range res.Display {
		rows = append(rows, decorate(&res.Display[i], id))
	}

	return &ListView{
		Rows:               rows,
		Counts:             res.Counts,
		Total:              res.Total,
		DatesWithData:      res.DatesWithData,
		Statuses:           ws.Statuses,
		AssignableStatuses: actions.AssignableStatuses(ws.Statuses, id),
		Leasings:           ws.Leasings,
		Users:              ws.Users,
		PICs:               ws.PICs,
		Surveyors:          ws.Surveyors,
		CanViewAll:         id.CanViewAll(),
		Result:             res,
	}, nil
}

// Get fetches a record the identity may see. Records outside a narrow
// identity's scope are reported as not found.
func (s *RecordService) Get(ctx context.Context, sess *Session, id string) (*domain.BorrowerRecord, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrNoSession
	}
	rec, err := s.api.GetRecord(ctx, sess.Token(), id)
	if err != nil {
		return nil, sess.Guard(ctx, err)
	}
	if len(filter.ScopeToIdentity([]domain.BorrowerRecord{*rec}, sess.Identity())) == 0 {
		return nil, fmt.Errorf("%w: record %s", domain.ErrNotFound, id)
	}
	return rec, nil
}

// Detail builds the single-record page
func (s *RecordService) Detail(ctx context.Context, sess *Session, id string) (*RecordDetail, error) {
	rec, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	link, _ := phone.WhatsAppLink(rec.Phone)
	return &RecordDetail{
		Record:       rec,
		Actions:      actionViews(rec, sess.Identity()),
		WhatsAppLink: link,
		Documents:    rec.Documents(),
	}, nil
}

// Create submits a new record with its documents
func (s *RecordService) Create(ctx context.Context, sess *Session, in RecordInput, uploads []upstream.Upload) (*domain.BorrowerRecord, error) {
	if err := s.checkWrite(ctx, sess, &in); err != nil {
		return nil, err
	}
	rec := in.toRecord()
	if rec.User == nil {
		if uid := sess.Identity().UserID; uid != "" {
			rec.User = &domain.User{ID: uid}
		}
	}

	created, err := s.api.CreateRecord(ctx, sess.Token(), rec, uploads)
	if err != nil {
		return nil, sess.Guard(ctx, err)
	}
	s.logger.Info("record created",
		zap.String("id", created.ID),
		zap.String("by", sess.Identity().Email),
		zap.Int("documents", len(uploads)),
	)
	return created, nil
}

// Update replaces a record; documents not uploaded stay as they are
func (s *RecordService) Update(ctx context.Context, sess *Session, id string, in RecordInput, uploads []upstream.Upload) (*domain.BorrowerRecord, error) {
	if err := s.checkWrite(ctx, sess, &in); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, sess, id); err != nil {
		return nil, err
	}

	rec := in.toRecord()
	rec.ID = id
	updated, err := s.api.UpdateRecord(ctx, sess.Token(), id, rec, uploads)
	if err != nil {
		return nil, sess.Guard(ctx, err)
	}
	s.logger.Info("record updated", zap.String("id", id), zap.String("by", sess.Identity().Email))
	return updated, nil
}

// Delete removes a record; only offered to administrators
func (s *RecordService) Delete(ctx context.Context, sess *Session, id string) error {
	rec, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	if !actions.Allows(rec, sess.Identity(), actions.Delete) {
		return fmt.Errorf("%w: %s", domain.ErrActionNotOffered, actions.Delete)
	}
	if err := s.api.DeleteRecord(ctx, sess.Token(), id); err != nil {
		return sess.Guard(ctx, err)
	}
	s.logger.Info("record deleted", zap.String("id", id), zap.String("by", sess.Identity().Email))
	return nil
}

// Transition performs a lifecycle action after checking it is offered.
// The upstream stays the final authority; a rejection leaves nothing changed locally.
func (s *RecordService) Transition(ctx context.Context, sess *Session, id string, action actions.Action) error {
	endpoint, ok := transitionEndpoints[action]
	if !ok {
		return fmt.Errorf("%w: %s is not a transition", domain.ErrUnknownAction, action)
	}
	rec, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	if !actions.Allows(rec, sess.Identity(), action) {
		return fmt.Errorf("%w: %s on status %q", domain.ErrActionNotOffered, action, rec.StatusCode())
	}
	if err := s.api.Transition(ctx, sess.Token(), id, endpoint); err != nil {
		return sess.Guard(ctx, err)
	}
	s.logger.Info("record transitioned",
		zap.String("id", id),
		zap.String("action", string(action)),
		zap.String("from", rec.StatusCode()),
		zap.String("by", sess.Identity().Email),
	)
	return nil
}

// Document downloads one supporting document of a visible record
func (s *RecordService) Document(ctx context.Context, sess *Session, id string, kind domain.DocumentKind) ([]byte, string, error) {
	rec, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, "", err
	}
	url := rec.DocumentURL(kind)
	if url == "" {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrNotFound, kind.Label())
	}
	body, ctype, err := s.api.FetchDocument(ctx, sess.Token(), url)
	if err != nil {
		return nil, "", sess.Guard(ctx, err)
	}
	return body, ctype, nil
}

// checkWrite validates the form and the status the viewer wants to assign
func (s *RecordService) checkWrite(ctx context.Context, sess *Session, in *RecordInput) error {
	if !sess.Authenticated() {
		return domain.ErrNoSession
	}
	if err := in.Validate(); err != nil {
		return err
	}
	id := sess.Identity()
	if in.StatusID == "" || id.IsAdmin() {
		return nil
	}

	var statuses []domain.Status
	if err := s.api.List(ctx, sess.Token(), upstream.Statuses, &statuses); err != nil {
		return sess.Guard(ctx, err)
	}
	if !actions.CanAssign(statuses, id, in.StatusID) {
		return fmt.Errorf("%w: status %s cannot be assigned", domain.ErrInvalidInput, in.StatusID)
	}
	return nil
}

func decorate(r *domain.BorrowerRecord, id *domain.Identity) RecordRow {
	link, _ := phone.WhatsAppLink(r.Phone)
	return RecordRow{
		BorrowerRecord: *r,
		Actions:        actionViews(r, id),
		WhatsAppLink:   link,
		NotesPreview:   NotesPreview(r.Notes),
	}
}

func actionViews(r *domain.BorrowerRecord, id *domain.Identity) []ActionView {
	permitted := actions.Permitted(r, id)
	out := make([]ActionView, 0, len(permitted))
	for _, a := range permitted {
		out = append(out, ActionView{Action: a, Label: a.Label()})
	}
	return out
}

// NotesPreview truncates notes to NotesPreviewLen characters followed by "..."
func NotesPreview(notes string) string {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) <= NotesPreviewLen {
		return notes
	}
	return string([]rune(notes)[:NotesPreviewLen]) + "..."
}
