package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// amountFormatter renders money with the grouping and decimal marks of a
// locale. Output is for display only; amounts go through float64.
type amountFormatter struct {
	printer  *message.Printer
	currency string
}

func newAmountFormatter(locale, currency string) (*amountFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &amountFormatter{printer: message.NewPrinter(tag), currency: currency}, nil
}

// Format renders d with two fraction digits followed by the currency code
func (f *amountFormatter) Format(d decimal.Decimal) string {
	return f.printer.Sprintf("%v %s", number.Decimal(d.InexactFloat64(), number.Scale(2)), f.currency)
}

func writeTrialBalance(w io.Writer, tb *ledger.TrialBalance, f *amountFormatter) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Code\tAccount\tType\tDebit\tCredit\t")
	blank := func(d decimal.Decimal) string {
		if d.IsZero() {
			return ""
		}
		return f.Format(d)
	}
	for _, line := range tb.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", line.Code, line.Name, line.Type, blank(line.Debit), blank(line.Credit))
	}
	fmt.Fprintf(tw, "\tTotal\t\t%s\t%s\t\n", f.Format(tb.TotalDebit), f.Format(tb.TotalCredit))
	if err := tw.Flush(); err != nil {
		return err
	}
	status := "balanced"
	if !tb.IsBalanced {
		status = "NOT balanced"
	}
	_, err := fmt.Fprintln(w, status)
	return err
}
