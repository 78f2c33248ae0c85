package printing

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPDFRenderer is a mock implementation of PDFRenderer
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
}

func money(s string) valueobject.Money {
	m, err := valueobject.NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func sampleReceipt() *ReceiptData {
	return &ReceiptData{
		TransactionID:   "TRXLOYW3V28AB01",
		ReferenceNumber: "GC-0001",
		PayerName:       "Juan Dela Cruz",
		PayerEmail:      "juan@example.com",
		Method:          "GCash",
		Amount:          money("12500"),
		Applied:         money("12000"),
		Unapplied:       money("500"),
		Outstanding:     money("0"),
		AcceptedAt:      time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC),
		Lines: []ReceiptLine{
			{Year: 1, Semester: 1, TermName: "Pre-Midterm", Applied: money("6000"), BalanceAfter: money("0")},
			{Year: 1, Semester: 1, TermName: "Midterm", Applied: money("6000"), BalanceAfter: money("0")},
		},
	}
}

func samplePermit() *PermitData {
	return &PermitData{
		PermitNo:      "12345678",
		Title:         "MIDTERM EXAMINATION PERMIT",
		StudentName:   "Juan Dela Cruz",
		College:       "College of Business and Accountancy",
		SemesterLabel: "1st Semester",
		SchoolYear:    "2024-2025",
		IssuedAt:      time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		Courses:       []PermitCourse{{Code: "PRIACC130", Section: "C20"}, {Code: "UDSELF030", Section: "C21"}},
	}
}

func TestParsePaperSize(t *testing.T) {
	tests := []struct {
		in   string
		want PaperSize
		ok   bool
	}{
		{"", PaperSizeA4, true},
		{"a4", PaperSizeA4, true},
		{" Letter ", PaperSizeLetter, true},
		{"A5", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePaperSize(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPrintParams(t *testing.T) {
	params := buildPrintParams(&RenderRequest{PaperSize: PaperSizeA4, Margins: DefaultMargins()})
	assert.InDelta(t, mmToInches(210), params.paperWidth, 0.001)
	assert.InDelta(t, mmToInches(297), params.paperHeight, 0.001)
	assert.InDelta(t, mmToInches(15), params.marginLeft, 0.001)

	letter := buildPrintParams(&RenderRequest{PaperSize: PaperSizeLetter})
	assert.InDelta(t, 8.5, letter.paperWidth, 0.001)
	assert.InDelta(t, 11.0, letter.paperHeight, 0.001)
}

func TestValidateRequest(t *testing.T) {
	var re *RenderError

	err := validateRequest(nil)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	err = validateRequest(&RenderRequest{HTML: "  ", PaperSize: PaperSizeA4})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	err = validateRequest(&RenderRequest{HTML: "<p>x</p>", PaperSize: "A3"})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidPaperSize, re.Code)

	assert.NoError(t, validateRequest(&RenderRequest{HTML: "<p>x</p>", PaperSize: PaperSizeA4}))
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("garbage")))
}

func TestRenderError(t *testing.T) {
	err := NewRenderError(ErrCodeRenderTimeout, "timeout occurred", nil)
	assert.Equal(t, "timeout occurred", err.Error())
	assert.Nil(t, err.Unwrap())

	wrapped := NewRenderError(ErrCodeRenderFailed, "render failed", assert.AnError)
	assert.Contains(t, wrapped.Error(), assert.AnError.Error())
	assert.ErrorIs(t, wrapped, assert.AnError)
}

func TestTemplateEngine_FormatMoney(t *testing.T) {
	e := NewTemplateEngine()
	assert.Equal(t, "₱0.00", e.FormatMoney(valueobject.Zero()))
	assert.Equal(t, "₱1,500.00", e.FormatMoney(money("1500")))
	assert.Equal(t, "₱1,234,567.05", e.FormatMoney(money("1234567.05")))
	assert.Equal(t, "-₱12.50", e.FormatMoney(money("-12.5")))
}

func TestTemplateEngine_Receipt(t *testing.T) {
	html, err := NewTemplateEngine().Execute(TemplateReceipt, receiptView{Institution: DefaultInstitution(), ReceiptData: sampleReceipt()})
	require.NoError(t, err)

	assert.Contains(t, html, "OFFICIAL PAYMENT RECEIPT")
	assert.Contains(t, html, "TRXLOYW3V28AB01")
	assert.Contains(t, html, "Pre-Midterm")
	assert.Contains(t, html, "₱12,500.00")
	assert.Contains(t, html, "Not applied")
	assert.Contains(t, html, "₱500.00")
	assert.Contains(t, html, "2024-08-01 09:30")
}

func TestTemplateEngine_ReceiptWithoutUnapplied(t *testing.T) {
	data := sampleReceipt()
	data.Unapplied = valueobject.Zero()
	data.Lines = nil

	html, err := NewTemplateEngine().Execute(TemplateReceipt, receiptView{Institution: DefaultInstitution(), ReceiptData: data})
	require.NoError(t, err)
	assert.NotContains(t, html, "Not applied")
	assert.Contains(t, html, "No outstanding balance was due.")
}

func TestTemplateEngine_Permit(t *testing.T) {
	data := samplePermit()
	data.StudentName = "<script>alert(1)</script>"

	html, err := NewTemplateEngine().Execute(TemplatePermit, permitView{Institution: DefaultInstitution(), PermitData: data})
	require.NoError(t, err)

	assert.Contains(t, html, "MIDTERM EXAMINATION PERMIT")
	assert.Contains(t, html, "Permit No. 12345678")
	assert.Contains(t, html, "PRIACC130")
	assert.Contains(t, html, "C21")
	assert.Contains(t, html, "1st Semester 2024-2025")
	assert.Contains(t, html, "September 2, 2024")
	assert.NotContains(t, html, "<script>")
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	_, err := NewTemplateEngine().Execute("invoice.html", nil)
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeTemplateNotFound, re.Code)
}

func TestTemplateEngine_CustomSource(t *testing.T) {
	fsys := fstest.MapFS{
		"permit.html": {Data: []byte(`{{upper .Title}} {{title "juan dela cruz"}}`)},
	}
	e, err := NewTemplateEngineE(WithTemplateFS(fsys))
	require.NoError(t, err)

	out, err := e.Execute(TemplatePermit, map[string]string{"Title": "final examination permit"})
	require.NoError(t, err)
	assert.Equal(t, "FINAL EXAMINATION PERMIT Juan Dela Cruz", out)

	_, err = NewTemplateEngineE(WithTemplateFS(fstest.MapFS{"bad.html": {Data: []byte("{{.Broken")}}))
	assert.Error(t, err)
}

func TestDocumentService_RenderPermit(t *testing.T) {
	pdf := new(MockPDFRenderer)
	pdf.On("Render", mock.Anything, mock.MatchedBy(func(req *RenderRequest) bool {
		return req.PaperSize == PaperSizeLetter &&
			req.Title == "MIDTERM EXAMINATION PERMIT 12345678" &&
			strings.Contains(req.HTML, "PRIACC130") &&
			req.Timeout == 5*time.Second
	})).Return(&RenderResult{PDFData: []byte("%PDF-1.4"), PageCount: 1}, nil)

	svc := NewDocumentService(NewTemplateEngine(), pdf, PaperSizeLetter, nil).WithTimeout(5 * time.Second)
	doc, err := svc.RenderPermit(context.Background(), samplePermit())
	require.NoError(t, err)

	assert.Equal(t, PermitFilename, doc.Filename)
	assert.Equal(t, PDFContentType, doc.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), doc.Content)
	pdf.AssertExpectations(t)
}

func TestDocumentService_RenderReceipt(t *testing.T) {
	pdf := new(MockPDFRenderer)
	pdf.On("Render", mock.Anything, mock.AnythingOfType("*printing.RenderRequest")).
		Return(&RenderResult{PDFData: []byte("%PDF")}, nil)

	inst := DefaultInstitution()
	inst.Name = "TEST UNIVERSITY"
	svc := NewDocumentService(NewTemplateEngine(), pdf, "", nil).WithInstitution(inst)

	doc, err := svc.RenderReceipt(context.Background(), sampleReceipt())
	require.NoError(t, err)
	assert.Equal(t, ReceiptFilename, doc.Filename)
	assert.Contains(t, doc.HTML, "TEST UNIVERSITY")

	req := pdf.Calls[0].Arguments.Get(1).(*RenderRequest)
	assert.Equal(t, PaperSizeA4, req.PaperSize)
}

func TestDocumentService_RendererError(t *testing.T) {
	pdf := new(MockPDFRenderer)
	pdf.On("Render", mock.Anything, mock.Anything).
		Return(nil, NewRenderError(ErrCodeRenderTimeout, "timed out", nil))

	_, err := NewDocumentService(NewTemplateEngine(), pdf, PaperSizeA4, nil).RenderReceipt(context.Background(), sampleReceipt())
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeRenderTimeout, re.Code)
}
