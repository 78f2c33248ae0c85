package printing

import (
	"context"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Attachment file names
const (
	ReceiptFilename = "payment_receipt.pdf"
	PermitFilename  = "exam_permit.pdf"
	PDFContentType  = "application/pdf"
)

// Institution is printed in every document header
type Institution struct {
	Name       string
	Office     string
	City       string
	Signatory  string
	SignerRole string
}

// DefaultInstitution returns the accounting office header
func DefaultInstitution() Institution {
	return Institution{
		Name:       "UNIVERSITY OF NEGROS OCCIDENTAL-RECOLETOS, INC.",
		Office:     "Accounting Office",
		City:       "Bacolod City",
		Signatory:  "REV. FR. AMADEO OAR",
		SignerRole: "VP - Finance",
	}
}

// ReceiptLine is one term touched by an accepted payment
type ReceiptLine struct {
	Year         int
	Semester     int
	TermName     string
	Applied      valueobject.Money
	BalanceAfter valueobject.Money
}

// ReceiptData is the content of a payment receipt
type ReceiptData struct {
	TransactionID   string
	ReferenceNumber string
	PayerName       string
	PayerEmail      string
	Method          string
	Amount          valueobject.Money
	Applied         valueobject.Money
	Unapplied       valueobject.Money
	Outstanding     valueobject.Money
	AcceptedAt      time.Time
	Lines           []ReceiptLine
}

// PermitCourse is one row of the permit course table
type PermitCourse struct {
	Code    string
	Section string
}

// PermitData is the content of an examination permit
type PermitData struct {
	PermitNo      string
	Title         string
	StudentName   string
	College       string
	SemesterLabel string
	SchoolYear    string
	IssuedAt      time.Time
	Courses       []PermitCourse
}

// Document is a rendered PDF ready to attach
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
	HTML        string
}

// DocumentRenderer renders the portal documents
type DocumentRenderer interface {
	RenderReceipt(ctx context.Context, data *ReceiptData) (*Document, error)
	RenderPermit(ctx context.Context, data *PermitData) (*Document, error)
}

// DocumentService renders documents through the template engine and a PDF
// renderer
type DocumentService struct {
	engine      *TemplateEngine
	pdf         PDFRenderer
	paperSize   PaperSize
	institution Institution
	timeout     time.Duration
	logger      *zap.Logger
}

// NewDocumentService creates a document service
func NewDocumentService(engine *TemplateEngine, pdf PDFRenderer, paperSize PaperSize, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !paperSize.IsValid() {
		paperSize = PaperSizeA4
	}
	return &DocumentService{
		engine:      engine,
		pdf:         pdf,
		paperSize:   paperSize,
		institution: DefaultInstitution(),
		logger:      logger,
	}
}

// WithInstitution overrides the document header
func (s *DocumentService) WithInstitution(inst Institution) *DocumentService {
	s.institution = inst
	return s
}

// WithTimeout sets the per-document render timeout
func (s *DocumentService) WithTimeout(d time.Duration) *DocumentService {
	s.timeout = d
	return s
}

type receiptView struct {
	Institution Institution
	*ReceiptData
}

type permitView struct {
	Institution Institution
	*PermitData
}

// RenderReceipt renders the receipt of an accepted payment
func (s *DocumentService) RenderReceipt(ctx context.Context, data *ReceiptData) (*Document, error) {
	return s.render(ctx, TemplateReceipt, "Payment Receipt "+data.TransactionID, ReceiptFilename,
		receiptView{Institution: s.institution, ReceiptData: data})
}

// RenderPermit renders an examination permit
func (s *DocumentService) RenderPermit(ctx context.Context, data *PermitData) (*Document, error) {
	return s.render(ctx, TemplatePermit, data.Title+" "+data.PermitNo, PermitFilename,
		permitView{Institution: s.institution, PermitData: data})
}

func (s *DocumentService) render(ctx context.Context, tmpl, title, filename string, data any) (*Document, error) {
	html, err := s.engine.Execute(tmpl, data)
	if err != nil {
		return nil, err
	}

	result, err := s.pdf.Render(ctx, &RenderRequest{
		HTML:      html,
		PaperSize: s.paperSize,
		Margins:   DefaultMargins(),
		Title:     title,
		Timeout:   s.timeout,
	})
	if err != nil {
		s.logger.Warn("Document rendering failed", zap.String("template", tmpl), zap.Error(err))
		return nil, err
	}

	return &Document{
		Filename:    filename,
		ContentType: PDFContentType,
		Content:     result.PDFData,
		HTML:        html,
	}, nil
}

var _ DocumentRenderer = (*DocumentService)(nil)
