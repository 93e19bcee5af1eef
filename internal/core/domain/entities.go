package domain

import (
	"strings"
	"time"
)

// Role represents the console role derived from the token role code
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleStaffBroad  Role = "STAFF_BROAD"
	RoleStaffNarrow Role = "STAFF_NARROW"
)

// Upstream role codes carried in the token payload
const (
	RoleCodeAdmin      = "R001"
	RoleCodeStaffBroad = "R002"
)

// RoleFromCode maps an upstream role code to a console role.
// Unknown or empty codes fall back to narrow visibility.
func RoleFromCode(code string) Role {
	switch strings.TrimSpace(code) {
	case RoleCodeAdmin:
		return RoleAdmin
	case RoleCodeStaffBroad:
		return RoleStaffBroad
	default:
		return RoleStaffNarrow
	}
}

// Identity is the staff member recovered from a bearer token.
// A nil *Identity means unauthenticated.
type Identity struct {
	Email    string `json:"email"`
	UserID   string `json:"iduser,omitempty"`
	RoleCode string `json:"role_code,omitempty"`
	Role     Role   `json:"role"`
	Phone    string `json:"nohp,omitempty"`
}

// CanViewAll reports whether the identity sees records owned by any user
func (i *Identity) CanViewAll() bool {
	return i != nil && (i.Role == RoleAdmin || i.Role == RoleStaffBroad)
}

// IsAdmin reports whether the identity has administrator affordances
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Owns reports whether the record was authored by this identity.
// The user id is compared when both sides carry one, otherwise the email.
func (i *Identity) Owns(r *BorrowerRecord) bool {
	if i == nil || r == nil || r.User == nil {
		return false
	}
	if i.UserID != "" && r.User.ID != "" {
		return i.UserID == r.User.ID
	}
	return i.Email != "" && strings.EqualFold(i.Email, r.User.Email)
}

// Status codes observed in the lifecycle vocabulary
const (
	StatusSubmitted    = "S001"
	StatusProcessing   = "S002"
	StatusDataComplete = "S005"
)

// Status names that only administrators may assign through the edit form
const (
	StatusNameCancelled = "BATAL"
	StatusNameSearching = "PROSES PENCARIAN"
	StatusNameDisbursed = "CAIR"
)

// Status is a lifecycle stage
type Status struct {
	ID   string `json:"idstatus"`
	Name string `json:"namastatus"`
}

// RoleRef is a role as stored upstream
type RoleRef struct {
	ID   string `json:"idrole"`
	Name string `json:"namarole"`
}

// User is an upstream staff account
type User struct {
	ID       string   `json:"iduser"`
	Name     string   `json:"namauser"`
	Email    string   `json:"email"`
	Password string   `json:"password,omitempty"`
	Role     *RoleRef `json:"role,omitempty"`
}

// Leasing is a leasing partner
type Leasing struct {
	ID   string `json:"idleasing"`
	Name string `json:"namaleasing"`
}

// PIC is the designated contact person of a leasing partner
type PIC struct {
	ID          string `json:"idpic"`
	Name        string `json:"namapic"`
	Phone       string `json:"nohp,omitempty"`
	LeasingName string `json:"namaleasing,omitempty"`
	LeasingFrom string `json:"asalleasing,omitempty"`
}

// Surveyor is a field agent assigned to a case
type Surveyor struct {
	ID          string `json:"id"`
	Name        string `json:"namasurveyor"`
	Phone       string `json:"nohp,omitempty"`
	LeasingName string `json:"namaleasing,omitempty"`
	LeasingFrom string `json:"asalleasing,omitempty"`
}

// Admin is an upstream administrator account, keyed by email
type Admin struct {
	Name     string `json:"namaadmin"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// BorrowerRecord is a single financing applicant's case file (data peminjam)
type BorrowerRecord struct {
	ID           string    `json:"iddatapeminjam"`
	NIK          string    `json:"nik"`
	User         *User     `json:"user,omitempty"`
	Status       *Status   `json:"status,omitempty"`
	Leasing      *Leasing  `json:"leasing,omitempty"`
	PIC          *PIC      `json:"pic,omitempty"`
	Surveyor     *Surveyor `json:"surveyor,omitempty"`
	InputDate    Date      `json:"tglinput"`
	ReceiptDate  Date      `json:"tglpenerimaan"`
	DisburseDate Date      `json:"tglpencairan"`
	Name         string    `json:"namapeminjam"`
	Phone        string    `json:"nohp"`
	Asset        string    `json:"aset"`
	AssetYear    string    `json:"tahunaset"`
	Address      string    `json:"alamat"`
	City         string    `json:"kota"`
	District     string    `json:"kecamatan"`
	Notes        string    `json:"keterangan"`

	PhotoKTP           string `json:"fotoktp,omitempty"`
	PhotoBPKB          string `json:"fotobpkb,omitempty"`
	PhotoSTNK          string `json:"fotostnk,omitempty"`
	PhotoKK            string `json:"fotokk,omitempty"`
	PhotoBankStatement string `json:"fotorekeningkoran,omitempty"`
	PhotoElectricBill  string `json:"fotorekeninglistrik,omitempty"`
	PhotoMarriageBook  string `json:"fotobukunikah,omitempty"`
	PhotoCertificate   string `json:"fotosertifikat,omitempty"`
	PhotoGuarantorKTP  string `json:"fotoktppenjamin,omitempty"`
}

// StatusCode returns the status id or "" when the reference is missing
func (r *BorrowerRecord) StatusCode() string {
	if r.Status == nil {
		return ""
	}
	return r.Status.ID
}

// StatusName returns the status name or "" when the reference is missing
func (r *BorrowerRecord) StatusName() string {
	if r.Status == nil {
		return ""
	}
	return r.Status.Name
}

func (r *BorrowerRecord) LeasingID() string {
	if r.Leasing == nil {
		return ""
	}
	return r.Leasing.ID
}

func (r *BorrowerRecord) LeasingName() string {
	if r.Leasing == nil {
		return ""
	}
	return r.Leasing.Name
}

func (r *BorrowerRecord) UserID() string {
	if r.User == nil {
		return ""
	}
	return r.User.ID
}

func (r *BorrowerRecord) UserName() string {
	if r.User == nil {
		return ""
	}
	return r.User.Name
}

func (r *BorrowerRecord) PICID() string {
	if r.PIC == nil {
		return ""
	}
	return r.PIC.ID
}

func (r *BorrowerRecord) SurveyorID() string {
	if r.Surveyor == nil {
		return ""
	}
	return r.Surveyor.ID
}

// DocumentKind names a supporting document; the value doubles as the
// multipart field name and the JSON key of its URL.
type DocumentKind string

const (
	DocKTP           DocumentKind = "fotoktp"
	DocBPKB          DocumentKind = "fotobpkb"
	DocSTNK          DocumentKind = "fotostnk"
	DocKK            DocumentKind = "fotokk"
	DocBankStatement DocumentKind = "fotorekeningkoran"
	DocElectricBill  DocumentKind = "fotorekeninglistrik"
	DocMarriageBook  DocumentKind = "fotobukunikah"
	DocCertificate   DocumentKind = "fotosertifikat"
	DocGuarantorKTP  DocumentKind = "fotoktppenjamin"
)

// DocumentKinds lists every document kind in display order
var DocumentKinds = []DocumentKind{
	DocKTP, DocBPKB, DocSTNK, DocKK, DocBankStatement,
	DocElectricBill, DocMarriageBook, DocCertificate, DocGuarantorKTP,
}

var documentLabels = map[DocumentKind]string{
	DocKTP:           "Foto KTP",
	DocBPKB:          "Foto BPKB",
	DocSTNK:          "Foto STNK",
	DocKK:            "Foto KK",
	DocBankStatement: "Rekening Koran",
	DocElectricBill:  "Rekening Listrik",
	DocMarriageBook:  "Buku Nikah",
	DocCertificate:   "Sertifikat",
	DocGuarantorKTP:  "KTP Penjamin",
}

// Label returns the human label of the document kind
func (k DocumentKind) Label() string {
	if l, ok := documentLabels[k]; ok {
		return l
	}
	return string(k)
}

// ParseDocumentKind validates a document kind name
func ParseDocumentKind(s string) (DocumentKind, bool) {
	k := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := documentLabels[k]
	return k, ok
}

// Document is a present document URL on a record
type Document struct {
	Kind  DocumentKind `json:"kind"`
	Label string       `json:"label"`
	URL   string       `json:"url"`
}

// DocumentURL returns the URL stored for a document kind
func (r *BorrowerRecord) DocumentURL(kind DocumentKind) string {
	switch kind {
	case DocKTP:
		return r.PhotoKTP
	case DocBPKB:
		return r.PhotoBPKB
	case DocSTNK:
		return r.PhotoSTNK
	case DocKK:
		return r.PhotoKK
	case DocBankStatement:
		return r.PhotoBankStatement
	case DocElectricBill:
		return r.PhotoElectricBill
	case DocMarriageBook:
		return r.PhotoMarriageBook
	case DocCertificate:
		return r.PhotoCertificate
	case DocGuarantorKTP:
		return r.PhotoGuarantorKTP
	}
	return ""
}

// Documents returns the documents that carry a URL, in display order
func (r *BorrowerRecord) Documents() []Document {
	docs := make([]Document, 0, len(DocumentKinds))
	for _, kind := range DocumentKinds {
		if url := r.DocumentURL(kind); url != "" {
			docs = append(docs, Document{Kind: kind, Label: kind.Label(), URL: url})
		}
	}
	return docs
}

// Workspace is one consistent load of records plus reference data
type Workspace struct {
	Records   []BorrowerRecord `json:"records"`
	Statuses  []Status         `json:"statuses"`
	Leasings  []Leasing        `json:"leasings"`
	Users     []User           `json:"users"`
	PICs      []PIC            `json:"pics"`
	Surveyors []Surveyor       `json:"surveyors"`
	LoadedAt  time.Time        `json:"loaded_at"`
}
