package services

import (
	"fmt"

	"github.com/sarrafbook/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	StatementSheet = "صورتحساب"
	PaymentsSheet  = "پرداخت‌ها"

	// XLSXContentType is the MIME type of generated statements.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var statementHeader = []any{
	"تاریخ", "نوع", "مقدار", "ارز", "نرخ", "مبلغ کل", "دریافتی", "مانده", "وضعیت", "پیشرفت", "توضیحات",
}

var paymentsHeader = []any{"تاریخ", "معامله", "مبلغ", "روش", "توضیحات"}

// Statement is the input of a customer statement workbook.
type Statement struct {
	Customer     models.Customer
	Transactions []models.Transaction // with Payments loaded
	Date         string               // Jalali date the statement was produced
}

// RenderStatement builds a right-to-left workbook with one row per trade, a
// totals row, and a sheet listing every payment.
func RenderStatement(st Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StatementSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(PaymentsSheet); err != nil {
		return nil, fmt.Errorf("failed to add payments sheet: %w", err)
	}

	rtl := true
	for _, sheet := range []string{StatementSheet, PaymentsSheet} {
		if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return nil, fmt.Errorf("failed to set sheet view: %w", err)
		}
		if err := f.SetColWidth(sheet, "A", "K", 16); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	// Title rows.
	if err := f.SetCellValue(StatementSheet, "A1", st.Customer.Name); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(StatementSheet, "A2", st.Date); err != nil {
		return nil, err
	}
	if err := setRow(f, StatementSheet, 3, statementHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(StatementSheet, "A1", "K3", bold); err != nil {
		return nil, err
	}

	row := 4
	total, received, remaining := decimal.Zero, decimal.Zero, decimal.Zero
	var payments [][]any
	for _, t := range st.Transactions {
		t.Complete()
		rate := any("شرطی")
		if v, ok := t.Rate.Value(); ok {
			rate = v.InexactFloat64()
		}
		values := []any{
			t.TransactionDate,
			t.Type.Label(),
			t.Amount.InexactFloat64(),
			t.Currency,
			rate,
			t.TotalValue.InexactFloat64(),
			t.AmountReceived.InexactFloat64(),
			t.AmountRemaining.InexactFloat64(),
			t.Status.Label(),
			t.Progress().Label(),
			t.Description,
		}
		if err := setRow(f, StatementSheet, row, values); err != nil {
			return nil, err
		}
		row++

		total = total.Add(t.TotalValue)
		received = received.Add(t.AmountReceived)
		remaining = remaining.Add(t.AmountRemaining)

		for _, p := range t.Payments {
			payments = append(payments, []any{
				p.PaymentDate, t.TransactionDate, p.Amount.InexactFloat64(), p.Method.Label(), p.Description,
			})
		}
	}

	totals := []any{"جمع", nil, nil, nil, nil, total.InexactFloat64(), received.InexactFloat64(), remaining.InexactFloat64()}
	if err := setRow(f, StatementSheet, row, totals); err != nil {
		return nil, err
	}
	totalsCell, _ := excelize.CoordinatesToCellName(1, row)
	endCell, _ := excelize.CoordinatesToCellName(len(statementHeader), row)
	if err := f.SetCellStyle(StatementSheet, totalsCell, endCell, bold); err != nil {
		return nil, err
	}

	if err := setRow(f, PaymentsSheet, 1, paymentsHeader); err != nil {
		return nil, err
	}
	for i, p := range payments {
		if err := setRow(f, PaymentsSheet, i+2, p); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
