package services

import (
	"context"
	"errors"
	"time"

	"daterbo-console/internal/adapters/export"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/filter"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxParallelDownloads bounds concurrent document downloads per export
const maxParallelDownloads = 3

// File is a generated download
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Content types of generated files
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// ExportService renders the displayed records and record documents to files
type ExportService struct {
	api     Upstream
	records *RecordService
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService creates an export service
func NewExportService(api Upstream, records *RecordService, logger *zap.Logger) *ExportService {
	return &ExportService{api: api, records: records, logger: logger, now: time.Now}
}

// XLSX exports the display set of criteria as a spreadsheet
func (s *ExportService) XLSX(ctx context.Context, sess *Session, c filter.Criteria) (*File, error) {
	view, err := s.records.List(ctx, sess, c)
	if err != nil {
		return nil, err
	}
	data, err := export.WriteXLSX(view.Result.Display)
	if err != nil {
		return nil, err
	}
	s.logger.Info("exported xlsx", zap.Int("rows", len(view.Result.Display)), zap.String("by", sess.Identity().Email))
	return &File{Name: export.XLSXFileName(s.now()), ContentType: ContentTypeXLSX, Data: data}, nil
}

// PDF exports the display set of criteria as a printable report
func (s *ExportService) PDF(ctx context.Context, sess *Session, c filter.Criteria) (*File, error) {
	view, err := s.records.List(ctx, sess, c)
	if err != nil {
		return nil, err
	}
	now := s.now()
	data, err := export.WriteReportPDF(view.Result.Display, now)
	if err != nil {
		return nil, err
	}
	s.logger.Info("exported pdf", zap.Int("rows", len(view.Result.Display)), zap.String("by", sess.Identity().Email))
	return &File{Name: export.ReportFileName(now), ContentType: ContentTypePDF, Data: data}, nil
}

// Documents bundles every present document of a record into one PDF.
// Failed downloads become placeholder pages; only a lost session aborts.
func (s *ExportService) Documents(ctx context.Context, sess *Session, id string) (*File, error) {
	rec, err := s.records.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	docs := rec.Documents()
	images := make([]export.DocumentImage, len(docs))
	token := sess.Token()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for i, doc := range docs {
		images[i] = export.DocumentImage{Kind: doc.Kind, Label: doc.Label}
		g.Go(func() error {
			data, _, err := s.api.FetchDocument(gctx, token, doc.URL)
			if errors.Is(err, domain.ErrUnauthorized) {
				return err
			}
			if err != nil {
				s.logger.Warn("document download failed",
					zap.String("record", id),
					zap.String("document", string(doc.Kind)),
					zap.Error(err),
				)
			}
			images[i].Data = data
			images[i].Err = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, sess.Guard(ctx, err)
	}

	data, err := export.WriteDocumentsPDF(images)
	if err != nil {
		return nil, err
	}
	return &File{Name: export.DocumentsFileName(rec.Name), ContentType: ContentTypePDF, Data: data}, nil
}
