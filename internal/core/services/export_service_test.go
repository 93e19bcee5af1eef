package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExportService_Documents(t *testing.T) {
	f := seededUpstream(t)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))

	f.records[0].Name = "Budi / Santoso"
	f.records[0].PhotoKTP = "http://files/ktp.png"
	f.records[0].PhotoBPKB = "http://files/missing.png"
	f.documents["http://files/ktp.png"] = buf.Bytes()

	records := newRecordService(f)
	svc := NewExportService(f, records, zap.NewNop())
	sess := newTestSession(t, nil, "R001", "U1")

	file, err := svc.Documents(context.Background(), sess, "P1")
	require.NoError(t, err)
	assert.Equal(t, "Dokumen_Budi _ Santoso.pdf", file.Name)
	assert.Equal(t, ContentTypePDF, file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))
	assert.True(t, f.called("FetchDocument:http://files/missing.png"))
	assert.True(t, sess.Authenticated())
}

func TestExportService_DocumentsUnauthorized(t *testing.T) {
	f := seededUpstream(t)
	f.records[0].PhotoKTP = "http://files/ktp.png"
	f.errs["FetchDocument:http://files/ktp.png"] = domain.ErrUnauthorized

	svc := NewExportService(f, newRecordService(f), zap.NewNop())
	sess := newTestSession(t, nil, "R001", "U1")

	_, err := svc.Documents(context.Background(), sess, "P1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, sess.Authenticated())
}

func TestExportService_XLSXAndPDF(t *testing.T) {
	f := seededUpstream(t)
	svc := NewExportService(f, newRecordService(f), zap.NewNop())
	sess := newTestSession(t, nil, "R002", "U9")

	file, err := svc.XLSX(context.Background(), sess, filter.Criteria{Status: filter.All()})
	require.NoError(t, err)
	assert.Equal(t, ContentTypeXLSX, file.ContentType)
	assert.Contains(t, file.Name, ".xlsx")
	assert.NotEmpty(t, file.Data)

	file, err = svc.PDF(context.Background(), sess, filter.Criteria{Status: filter.Only("BARU")})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))
}
