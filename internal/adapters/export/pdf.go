package export

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strconv"
	"strings"
	"time"

	"daterbo-console/internal/core/domain"

	"github.com/go-pdf/fpdf"
)

// DocumentImage is one downloaded document; Err marks a failed download
type DocumentImage struct {
	Kind  domain.DocumentKind
	Label string
	Data  []byte
	Err   error
}

// PlaceholderText is printed on the page of a document that could not be loaded
func PlaceholderText(label string) string {
	return "Gagal memuat gambar: " + label
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// DocumentsFileName returns Dokumen_<name>.pdf with unsafe characters replaced by "_"
func DocumentsFileName(borrowerName string) string {
	if borrowerName == "" {
		borrowerName = "DataPeminjam"
	}
	return "Dokumen_" + unsafeFileChars.ReplaceAllString(borrowerName, "_") + ".pdf"
}

// ReportFileName names the report PDF after the export date
func ReportFileName(at time.Time) string {
	return "DataPeminjam_" + at.Format("20060102") + ".pdf"
}

var reportColumns = []struct {
	title string
	width float64
	value func(r *domain.BorrowerRecord) string
}{
	{"NIK", 34, func(r *domain.BorrowerRecord) string { return r.NIK }},
	{"Nama Peminjam", 45, func(r *domain.BorrowerRecord) string { return r.Name }},
	{"User", 30, func(r *domain.BorrowerRecord) string { return r.UserName() }},
	{"No. HP", 28, func(r *domain.BorrowerRecord) string { return r.Phone }},
	{"Aset", 35, func(r *domain.BorrowerRecord) string { return r.Asset }},
	{"Status", 30, func(r *domain.BorrowerRecord) string { return r.StatusName() }},
	{"Leasing", 30, func(r *domain.BorrowerRecord) string { return r.LeasingName() }},
	{"Tgl Input", 22, func(r *domain.BorrowerRecord) string { return r.InputDate.Display() }},
}

// WriteReportPDF renders records as a landscape table
func WriteReportPDF(records []domain.BorrowerRecord, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, "Halaman "+strconv.Itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(31, 78, 120)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(10, 7, "No", "1", 0, "C", true, 0, "")
		for _, col := range reportColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Data Peminjam", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Dicetak %s, %d data", generatedAt.Format("02/01/2006 15:04"), len(records)), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i := range records {
		if pdf.GetY()+6 > pageHeight-bottom-6 {
			pdf.AddPage()
			header()
		}
		pdf.CellFormat(10, 6, strconv.Itoa(i+1), "1", 0, "C", false, 0, "")
		for _, col := range reportColumns {
			pdf.CellFormat(col.width, 6, fit(pdf, tr(col.value(&records[i])), col.width-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDocumentsPDF renders one page per document: the label, then the image.
// A document that failed to download or cannot be embedded gets a placeholder
// page instead of aborting the export.
func WriteDocumentsPDF(images []DocumentImage) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 12)

	if len(images) == 0 {
		pdf.AddPage()
		pdf.Text(10, 10, "Tidak ada dokumen")
	}

	for i, img := range images {
		pdf.AddPage()
		imageType, ok := embeddable(img)
		if !ok {
			pdf.Text(10, 10, tr(PlaceholderText(img.Label)))
			continue
		}

		name := "doc" + strconv.Itoa(i)
		opt := fpdf.ImageOptions{ImageType: imageType}
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(img.Data))
		pdf.Text(10, 10, tr(img.Label))
		pdf.ImageOptions(name, 10, 20, 180, 160, false, opt, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render documents: %w", err)
	}
	return buf.Bytes(), nil
}

// embeddable reports whether fpdf can embed the image, and as which type.
// fpdf latches the first error for the whole document, so images are
// trial-registered on a scratch document first.
func embeddable(img DocumentImage) (string, bool) {
	if img.Err != nil || len(img.Data) == 0 {
		return "", false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return "", false
	}

	var imageType string
	switch format {
	case "jpeg":
		imageType = "JPG"
	case "png":
		imageType = "PNG"
	case "gif":
		imageType = "GIF"
	default:
		return "", false
	}

	probe := fpdf.New("P", "mm", "A4", "")
	probe.RegisterImageOptionsReader("probe", fpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(img.Data))
	if probe.Err() {
		return "", false
	}
	return imageType, true
}

// fit shortens s until it fits width, marking the cut with ".."
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"..") > width {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s) + ".."
}
