package accounting

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
)

var fecHeader = []string{
	"JournalCode",
	"JournalLib",
	"EcritureNum",
	"EcritureDate",
	"CompteNum",
	"CompteLib",
	"CompAuxNum",
	"CompAuxLib",
	"PieceRef",
	"PieceDate",
	"EcritureLib",
	"Debit",
	"Credit",
	"EcritureLet",
	"DateLet",
	"ValidDate",
	"Montantdevise",
	"Idevise",
}

// Line is one journal line of an entry
type Line struct {
	Account string
	Label   string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// Entry is the balanced set of lines booked for one paid invoice
type Entry struct {
	Number  int
	Invoice *entity.Invoice
	Lines   []Line
}

// BuildEntries books every paid invoice in (IssuedAt, InvoiceNumber) order:
// debit receivable for the total, credit revenue for the subtotal and, when
// positive, credit collected tax. It fails with ErrLedgerUnbalanced if any
// entry or the whole journal does not balance.
func BuildEntries(invoices []*entity.Invoice, accounts Accounts) ([]Entry, error) {
	var entries []Entry
	totalDebit, totalCredit := decimal.Zero, decimal.Zero

	for _, inv := range sortedInvoices(invoices) {
		if inv.Status != entity.InvoiceStatusPaid {
			continue
		}

		lines := []Line{
			{Account: accounts.ReceivableAccount, Label: accounts.ReceivableLabel, Debit: inv.Total, Credit: decimal.Zero},
			{Account: accounts.RevenueAccount, Label: accounts.RevenueLabel, Debit: decimal.Zero, Credit: inv.Subtotal},
		}
		if inv.TaxAmount.IsPositive() {
			lines = append(lines, Line{Account: accounts.TaxAccount, Label: accounts.TaxLabel, Debit: decimal.Zero, Credit: inv.TaxAmount})
		}

		debit, credit := decimal.Zero, decimal.Zero
		for _, l := range lines {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)
		}
		if debit.Sub(credit).Abs().GreaterThan(Tolerance) {
			return nil, fmt.Errorf("%w: invoice %s debits %s credits %s",
				domainErrors.ErrLedgerUnbalanced, inv.InvoiceNumber, debit.StringFixed(2), credit.StringFixed(2))
		}
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)

		entries = append(entries, Entry{Number: len(entries) + 1, Invoice: inv, Lines: lines})
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: journal debits %s credits %s",
			domainErrors.ErrLedgerUnbalanced, totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return entries, nil
}

// RenderFEC writes the fiscal ledger: tab separated, 18 columns, YYYYMMDD
// dates and comma decimals. Nothing is returned when the ledger is unbalanced.
func RenderFEC(invoices []*entity.Invoice, opts Options) ([]byte, error) {
	accounts := opts.accounts()
	loc := opts.location()

	entries, err := BuildEntries(invoices, accounts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	writeFECRow(&buf, fecHeader)

	for _, e := range entries {
		inv := e.Invoice
		issued := inv.IssuedAt.In(loc).Format("20060102")
		valid := issued
		if inv.PaidAt != nil {
			valid = inv.PaidAt.In(loc).Format("20060102")
		}
		label := fmt.Sprintf("Facture %s %s", inv.InvoiceNumber, inv.ClientName)

		for _, l := range e.Lines {
			auxLabel := ""
			if l.Account == accounts.ReceivableAccount {
				auxLabel = inv.ClientName
			}
			writeFECRow(&buf, []string{
				accounts.JournalCode,
				accounts.JournalLabel,
				strconv.Itoa(e.Number),
				issued,
				l.Account,
				l.Label,
				"",
				fecField(auxLabel),
				inv.InvoiceNumber,
				issued,
				fecField(label),
				amount(l.Debit),
				amount(l.Credit),
				"",
				"",
				valid,
				"",
				"",
			})
		}
	}
	return buf.Bytes(), nil
}

func writeFECRow(buf *bytes.Buffer, fields []string) {
	buf.WriteString(strings.Join(fields, "\t"))
	buf.WriteByte('\n')
}

// fecField strips characters that would break the tab separated layout
func fecField(s string) string {
	return strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
}

func sortedInvoices(invoices []*entity.Invoice) []*entity.Invoice {
	out := make([]*entity.Invoice, len(invoices))
	copy(out, invoices)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.Before(out[j].IssuedAt)
		}
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
	return out
}
