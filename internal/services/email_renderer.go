package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/sarrafbook/ledger/internal/numerals"
	"github.com/shopspring/decimal"
)

// DailySummary is the content of the nightly e-mail.
type DailySummary struct {
	Date       string
	TotalValue decimal.Decimal
	Received   decimal.Decimal
	Remaining  decimal.Decimal
	Lines      []SummaryLine
}

// SummaryLine is one trade in the nightly e-mail.
type SummaryLine struct {
	Customer string
	Type     string
	Amount   decimal.Decimal
	Currency string
	Total    decimal.Decimal
	Status   string
}

const layout = `
<html>
<body dir="rtl" style="font-family: Tahoma, 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
	<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
			<h2 style="margin: 0;">%s</h2>
		</div>
		<div style="padding: 20px;">
			%s
		</div>
	</div>
</body>
</html>
`

func page(color, title, content string) string {
	return fmt.Sprintf(layout, color, html.EscapeString(title), content)
}

// RenderErrorSection lists rows that could not be imported.
func RenderErrorSection(problems []string) string {
	if len(problems) == 0 {
		return ""
	}

	var items strings.Builder
	for _, p := range problems {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(p))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-right: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">⚠️ برخی ردیف‌ها وارد نشدند</h3>
			<ul style="margin-bottom: 0;">
				%s
			</ul>
		</div>
	`, items.String())
}

// ImportReportSubject is the subject line of an import report.
func ImportReportSubject(imported int, problems []string) string {
	if imported == 0 && len(problems) > 0 {
		return "ورود فایل ناموفق بود"
	}
	return fmt.Sprintf("%s معامله وارد شد", numerals.ToPersian(fmt.Sprint(imported)))
}

// RenderImportReport renders the body of an import report.
func RenderImportReport(imported int, problems []string) string {
	color := "#107c10"
	if imported == 0 && len(problems) > 0 {
		color = "#d13438"
	}
	content := fmt.Sprintf("<p>تعداد معاملات جدید: <b>%s</b></p>%s",
		numerals.ToPersian(fmt.Sprint(imported)), RenderErrorSection(problems))
	return page(color, ImportReportSubject(imported, problems), content)
}

// RenderDailySummary renders the nightly summary of one Jalali day.
func RenderDailySummary(s DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p>مجموع: <b>%s</b> &nbsp; دریافتی: <b>%s</b> &nbsp; مانده: <b>%s</b></p>`,
		numerals.FormatAmount(s.TotalValue), numerals.FormatAmount(s.Received), numerals.FormatAmount(s.Remaining))

	if len(s.Lines) == 0 {
		b.WriteString("<p>امروز معامله‌ای ثبت نشده است.</p>")
		return page("#0078d4", "خلاصه معاملات "+s.Date, b.String())
	}

	b.WriteString(`<table style="width: 100%; border-collapse: collapse;">`)
	b.WriteString(`<tr style="background: #f0f0f0;"><th>مشتری</th><th>نوع</th><th>مقدار</th><th>مبلغ کل</th><th>وضعیت</th></tr>`)
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s %s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(l.Customer),
			html.EscapeString(l.Type),
			numerals.FormatQuantity(l.Amount), html.EscapeString(l.Currency),
			numerals.FormatAmount(l.Total),
			html.EscapeString(l.Status),
		)
	}
	b.WriteString("</table>")
	return page("#0078d4", "خلاصه معاملات "+s.Date, b.String())
}

// RenderStatementReady renders the statement notification.
func RenderStatementReady(customerName, link string) string {
	content := fmt.Sprintf(`<p>صورتحساب مشتری <b>%s</b> آماده است.</p><p><a href="%s">دریافت فایل</a></p>`,
		html.EscapeString(customerName), html.EscapeString(link))
	return page("#0078d4", "صورتحساب "+customerName, content)
}
