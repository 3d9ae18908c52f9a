package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seamonger/procurement/internal/parser"
	"github.com/seamonger/procurement/internal/printer"
)

var listProducts bool

var parseCmd = &cobra.Command{
	Use:   "parse <text>...",
	Short: "Show the stock signal extracted from a supplier reply",
	Example: `  seamonger parse "aku ada 50kg bawal"
  seamonger parse --products`,
	Args: func(cmd *cobra.Command, args []string) error {
		if !listProducts && len(args) == 0 {
			return fmt.Errorf("requires reply text or --products")
		}
		return nil
	},
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&listProducts, "products", false, "List the product names the extractor recognises")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if listProducts {
		printer.Products(parser.Products())
		return nil
	}
	printer.Signal(parser.ParseStockSignal(strings.Join(args, " ")))
	return nil
}
