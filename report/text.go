package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/warp/batch-ledger/ledger"
)

// Render writes a human-readable account summary. It prints the Summary as
// is and derives nothing from it.
func Render(w io.Writer, s ledger.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "===== Account Summary =====")
	fmt.Fprintf(tw, "Account Number:\t%s\n", s.AccountNumber)
	fmt.Fprintf(tw, "Account Holder:\t%s\n", s.AccountHolder)
	fmt.Fprintf(tw, "Currency:\t%s\n", s.Currency)
	fmt.Fprintf(tw, "Opening Balance:\t%s\n", balanceText(s.OpeningBalance))
	fmt.Fprintf(tw, "Final Balance:\t%s\n", balanceText(s.FinalBalance))

	fmt.Fprintf(tw, "\nApplied Transactions (%d):\n", len(s.Applied))
	if len(s.Applied) > 0 {
		fmt.Fprintln(tw, "  #\tType\tAmount\tBalance After")
		for _, a := range s.Applied {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", a.Index, a.Transaction.Type, a.Amount, a.BalanceAfter)
		}
	}

	fmt.Fprintf(tw, "\nRejected Transactions (%d):\n", len(s.Rejected))
	if len(s.Rejected) > 0 {
		fmt.Fprintln(tw, "  #\tTransaction\tReason")
		for _, r := range s.Rejected {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", indexText(r.Index), transactionText(r.Transaction), r.Reason)
		}
	}

	return tw.Flush()
}

// RenderCompleted writes the completion marker line.
func RenderCompleted(w io.Writer) error {
	_, err := fmt.Fprintln(w, CompletedMarker)
	return err
}

func balanceText(b *decimal.Decimal) string {
	if b == nil {
		return "-"
	}
	return b.String()
}

func indexText(i *int) string {
	if i == nil {
		return "-"
	}
	return fmt.Sprint(*i)
}

func transactionText(tx *ledger.TransactionRequest) string {
	if tx == nil {
		return "(batch)"
	}
	b, err := json.Marshal(tx)
	if err != nil {
		return "(unprintable)"
	}
	return string(b)
}
