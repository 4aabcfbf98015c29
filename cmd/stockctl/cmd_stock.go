package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"stock-service/internal/app"
	"stock-service/internal/models"
	"stock-service/internal/repository"
)

// stockctl migrate
func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
				return nil
			})
		},
	}
}

func parseQuantity(raw string) (int, error) {
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", raw)
	}
	return qty, nil
}

// stockctl sale <productId> <quantity>
func (c *cli) saleCmd() *cobra.Command {
	var remarks string
	cmd := &cobra.Command{
		Use:   "sale <productId> <quantity>",
		Short: "Record a sale at the product's current price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.requireUser()
			if err != nil {
				return err
			}
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				tx, err := a.Recorder.RecordSale(ctx, models.SaleRequest{ProductID: args[0], Quantity: qty, Remarks: remarks}, user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tx)
			})
		},
	}
	cmd.Flags().StringVar(&remarks, "remarks", "", "free-text remarks")
	return cmd
}

// stockctl purchase <productId> <quantity> <unitPrice>
func (c *cli) purchaseCmd() *cobra.Command {
	var remarks, supplierID string
	cmd := &cobra.Command{
		Use:   "purchase <productId> <quantity> <unitPrice>",
		Short: "Record a purchase, optionally from a supplier",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.requireUser()
			if err != nil {
				return err
			}
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid unit price %q", args[2])
			}
			req := models.PurchaseRequest{ProductID: args[0], Quantity: qty, UnitPrice: price, Remarks: remarks}
			if supplierID != "" {
				req.SupplierID = &supplierID
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				tx, err := a.Recorder.RecordPurchase(ctx, req, user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tx)
			})
		},
	}
	cmd.Flags().StringVar(&supplierID, "supplier", "", "supplier the stock was bought from")
	cmd.Flags().StringVar(&remarks, "remarks", "", "free-text remarks")
	return cmd
}

// stockctl adjust <productId> <signedQuantity>
func (c *cli) adjustCmd() *cobra.Command {
	var remarks string
	cmd := &cobra.Command{
		Use:   "adjust <productId> <signedQuantity>",
		Short: "Record a manual adjustment; negative quantities remove stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.requireUser()
			if err != nil {
				return err
			}
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				tx, err := a.Recorder.RecordAdjustment(ctx, models.AdjustmentRequest{ProductID: args[0], Quantity: qty, Remarks: remarks}, user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tx)
			})
		},
	}
	cmd.Flags().StringVar(&remarks, "remarks", "", "free-text remarks")
	return cmd
}

// stockctl return <productId> <quantity>
func (c *cli) returnCmd() *cobra.Command {
	var remarks string
	cmd := &cobra.Command{
		Use:   "return <productId> <quantity>",
		Short: "Record a customer return and restock the product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.requireUser()
			if err != nil {
				return err
			}
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				tx, err := a.Recorder.RecordReturn(ctx, models.ReturnRequest{ProductID: args[0], Quantity: qty, Remarks: remarks}, user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tx)
			})
		},
	}
	cmd.Flags().StringVar(&remarks, "remarks", "", "free-text remarks")
	return cmd
}

// stockctl totals --type sale --from 2024-06-01 --to 2024-06-30
func (c *cli) totalsCmd() *cobra.Command {
	var typ, from, to, productID string
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Sum transaction totals over an inclusive date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.TransactionFilter{ProductID: productID}
			if typ != "" {
				t := models.TransactionType(typ)
				if !t.Valid() {
					return fmt.Errorf("unknown transaction type %q", typ)
				}
				filter.Type = &t
			}
			var err error
			if filter.From, err = parseDay(from, false); err != nil {
				return err
			}
			if filter.To, err = parseDay(to, true); err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				totals, err := a.Recorder.Totals(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"total": totals.Total.StringFixed(2),
					"count": totals.Count,
				})
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "sale, purchase, adjustment or return")
	cmd.Flags().StringVar(&from, "from", "", "start of the range (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "end of the range (inclusive)")
	cmd.Flags().StringVar(&productID, "product", "", "restrict to one product")
	return cmd
}
