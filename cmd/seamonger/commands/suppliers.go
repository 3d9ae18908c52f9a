package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seamonger/procurement/internal/domain"
	"github.com/seamonger/procurement/internal/printer"
	"github.com/seamonger/procurement/internal/store"
)

var addTrust float64

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Manage the supplier directory",
}

var suppliersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suppliers by trust score",
	Args:  cobra.NoArgs,
	RunE:  runSuppliersList,
}

var suppliersAddCmd = &cobra.Command{
	Use:   "add <supplier-id> <specialty>",
	Short: "Add or update a supplier",
	Long: `Add a supplier to the directory, or replace the specialty and trust score
of an existing one. The supplier id is the phone number messages are sent to.
A running server picks new suppliers up on its next restart.`,
	Args: cobra.ExactArgs(2),
	RunE: runSuppliersAdd,
}

func init() {
	suppliersAddCmd.Flags().Float64Var(&addTrust, "trust", domain.DefaultTrustScore, "initial trust score in [0, 1]")
	suppliersCmd.AddCommand(suppliersListCmd, suppliersAddCmd)
	rootCmd.AddCommand(suppliersCmd)
}

// withDirectory opens only the storage needed for directory commands.
func withDirectory(fn func(ctx context.Context, dir domain.Directory) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return printer.Error("Failed to open database", err.Error(), "database path: "+cfg.DBPath)
	}
	defer db.Close()

	dir, closeDir, err := openDirectory(ctx, cfg, db)
	if err != nil {
		return printer.Error("Failed to open supplier directory", err.Error())
	}
	defer closeDir()

	return fn(ctx, dir)
}

func runSuppliersList(cmd *cobra.Command, args []string) error {
	return withDirectory(func(ctx context.Context, dir domain.Directory) error {
		suppliers, err := dir.List(ctx)
		if err != nil {
			return printer.Error("Failed to list suppliers", err.Error())
		}
		printer.Suppliers(suppliers)
		return nil
	})
}

func runSuppliersAdd(cmd *cobra.Command, args []string) error {
	s := domain.Supplier{ID: args[0], Specialty: args[1], TrustScore: addTrust}
	return withDirectory(func(ctx context.Context, dir domain.Directory) error {
		if err := dir.Upsert(ctx, s); err != nil {
			return printer.Error("Failed to save supplier", err.Error())
		}
		s = s.Normalized()
		printer.Success("saved %s (%s, trust %.2f)", s.ID, s.Specialty, s.TrustScore)
		return nil
	})
}
