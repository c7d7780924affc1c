package accounting

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
)

var csvHeader = []string{
	"Numéro",
	"Date",
	"Client",
	"Statut",
	"Montant HT",
	"Taux TVA",
	"Montant TVA",
	"Montant TTC",
	"Date de paiement",
	"Mode de paiement",
}

// RenderCSV writes one row per invoice and a trailing totals row.
// Every field is quoted; the separator is a semicolon.
func RenderCSV(invoices []*entity.Invoice, opts Options) ([]byte, error) {
	loc := opts.location()

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	writeCSVRow(&buf, csvHeader)

	subtotal, tax, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, inv := range sortedInvoices(invoices) {
		paidAt := ""
		if inv.PaidAt != nil {
			paidAt = inv.PaidAt.In(loc).Format("02/01/2006")
		}
		writeCSVRow(&buf, []string{
			inv.InvoiceNumber,
			inv.IssuedAt.In(loc).Format("02/01/2006"),
			inv.ClientName,
			string(inv.Status),
			amount(inv.Subtotal),
			amount(inv.TaxRate),
			amount(inv.TaxAmount),
			amount(inv.Total),
			paidAt,
			inv.PaymentMethod,
		})
		subtotal = subtotal.Add(inv.Subtotal)
		tax = tax.Add(inv.TaxAmount)
		total = total.Add(inv.Total)
	}

	writeCSVRow(&buf, []string{"TOTAL", "", "", "", amount(subtotal), "", amount(tax), amount(total), "", ""})
	return buf.Bytes(), nil
}

func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(';')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}
