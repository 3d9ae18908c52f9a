// Package printer formats CLI output with colour.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/seamonger/procurement/internal/domain"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Out and Err are the destinations used by the package functions.
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

// Success prints a green line prefixed with a check mark.
func Success(format string, a ...any) {
	green.Fprintf(Out, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Warning prints a yellow line.
func Warning(format string, a ...any) {
	yellow.Fprintf(Out, "! %s\n", fmt.Sprintf(format, a...))
}

// Step prints a cyan progress line.
func Step(format string, a ...any) {
	cyan.Fprintf(Out, "→ %s\n", fmt.Sprintf(format, a...))
}

// Error prints a titled error with an optional hint to Err and returns an error
// carrying only the title, for cobra to propagate.
func Error(title, explanation string, hints ...string) error {
	red.Fprintf(Err, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(Err, "\n%s\n", explanation)
	}
	for _, h := range hints {
		fmt.Fprintf(Err, "  - %s\n", h)
	}
	return fmt.Errorf("%s", title)
}

// Suppliers prints a table of suppliers.
func Suppliers(suppliers []domain.Supplier) {
	if len(suppliers) == 0 {
		Warning("no suppliers registered")
		return
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUPPLIER\tSPECIALTY\tTRUST")
	for _, s := range suppliers {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\n", s.ID, s.Specialty, s.TrustScore)
	}
	tw.Flush()
}

// Signal prints an extracted stock signal.
func Signal(sig domain.StockSignal) {
	product, quantity := "-", "-"
	if sig.Product != nil {
		product = *sig.Product
	}
	if sig.QuantityKg != nil {
		quantity = strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", *sig.QuantityKg), "0"), ".") + " kg"
	}
	fmt.Fprintf(Out, "product:    %s\n", product)
	fmt.Fprintf(Out, "quantity:   %s\n", quantity)
	fmt.Fprintf(Out, "confidence: %.2f\n", sig.Confidence)
}

// Products prints one recognised product name per line.
func Products(names []string) {
	for _, name := range names {
		fmt.Fprintln(Out, name)
	}
}

// PollResult prints the outcome of an order cycle.
func PollResult(res domain.PollResult) {
	Success("%d order(s) processed, %d message(s) sent", res.Orders, res.MessagesSent)
}
