package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stock-service/internal/app"
	"stock-service/internal/models"
)

// stockctl rate-supplier <supplierId> <rating>
func (c *cli) rateSupplierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate-supplier <supplierId> <rating>",
		Short: "Fold a 0-5 rating into the supplier's running mean",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid rating %q", args[1])
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				supplier, err := a.SupplierBook.UpdateRating(ctx, args[0], rating)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), models.NewSupplierView(supplier))
			})
		},
	}
}
