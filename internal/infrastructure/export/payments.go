// Package export renders payment history as an XLSX workbook.
package export

import (
	"fmt"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/xuri/excelize/v2"
)

// Workbook metadata
const (
	PaymentsSheet = "Payments"
	SummarySheet  = "Summary"
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var paymentHeaders = []any{
	"Transaction ID", "Submitted At", "Full Name", "Email", "Mobile Number",
	"Reference Number", "Method", "Amount", "Status", "Verified At",
	"Applied", "Unapplied", "Proof URL",
}

// Filename names an export generated at t
func Filename(t time.Time) string {
	return "payment_history_" + t.Format("20060102_150405") + ".xlsx"
}

// PaymentHistory writes records, in the given order, to a workbook with a
// Payments sheet and a per-status Summary sheet
func PaymentHistory(records []*payment.Record, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PaymentsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	if err := f.SetSheetRow(PaymentsSheet, "A1", &paymentHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(PaymentsSheet, "A1", "M1", headerStyle); err != nil {
		return nil, err
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			r.TransactionID,
			r.SubmittedAt.Format("2006-01-02 15:04:05"),
			r.FullName,
			r.Email,
			r.MobileNumber,
			r.ReferenceNumber,
			string(r.Method),
			r.Amount.Float64(),
			string(r.Status),
			formatOptionalTime(r.VerifiedAt),
			r.AppliedAmount.Float64(),
			r.UnappliedAmount.Float64(),
			r.ProofURL,
		}
		if err := f.SetSheetRow(PaymentsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	last := len(records) + 1
	if len(records) > 0 {
		for _, col := range []string{"H", "K", "L"} {
			if err := f.SetCellStyle(PaymentsSheet, col+"2", fmt.Sprintf("%s%d", col, last), moneyStyle); err != nil {
				return nil, err
			}
		}
	}
	if err := f.AutoFilter(PaymentsSheet, fmt.Sprintf("A1:M%d", last), nil); err != nil {
		return nil, fmt.Errorf("failed to set filter: %w", err)
	}
	if err := f.SetPanes(PaymentsSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(PaymentsSheet, "A", "A", 22)
	_ = f.SetColWidth(PaymentsSheet, "B", "F", 20)
	_ = f.SetColWidth(PaymentsSheet, "M", "M", 60)

	if err := writeSummary(f, records, generatedAt, headerStyle, moneyStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, records []*payment.Record, generatedAt time.Time, headerStyle, moneyStyle int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	type bucket struct {
		count  int
		amount valueobject.Money
	}
	statuses := []payment.Status{payment.StatusPending, payment.StatusAccepted, payment.StatusRejected}
	totals := make(map[payment.Status]*bucket, len(statuses))
	for _, s := range statuses {
		totals[s] = &bucket{amount: valueobject.Zero()}
	}
	applied := valueobject.Zero()
	for _, r := range records {
		if b, ok := totals[r.Status]; ok {
			b.count++
			b.amount = b.amount.Add(r.Amount)
		}
		applied = applied.Add(r.AppliedAmount)
	}

	rows := [][]any{
		{"Generated At", generatedAt.Format("2006-01-02 15:04:05")},
		{},
		{"Status", "Payments", "Amount"},
	}
	for _, s := range statuses {
		rows = append(rows, []any{string(s), totals[s].count, totals[s].amount.Float64()})
	}
	rows = append(rows, []any{"Applied to balances", "", applied.Float64()})

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A3", "C3", headerStyle); err != nil {
		return err
	}
	return f.SetCellStyle(SummarySheet, "C4", fmt.Sprintf("C%d", len(rows)), moneyStyle)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
