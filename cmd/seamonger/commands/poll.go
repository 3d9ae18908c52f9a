package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seamonger/procurement/internal/printer"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run one order cycle and exit",
	Long: `Fetch unfulfilled orders once, ask the selected suppliers for stock and
print how many orders were seen and how many requests were sent.`,
	Args: cobra.NoArgs,
	RunE: runPoll,
}

func init() {
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	a, err := newApp(ctx, cfg, newLogger(cfg))
	if err != nil {
		return printer.Error("Failed to start", err.Error())
	}
	defer a.Close()

	printer.Step("polling for unfulfilled orders")
	res, err := a.poller.RunOnce(ctx)
	if err != nil {
		return printer.Error("Poll failed", err.Error(),
			"check SHOPIFY_STORE_DOMAIN / SHOPIFY_ACCESS_TOKEN",
			"check WHATSAPP_API_URL")
	}
	printer.PollResult(res)
	return nil
}
