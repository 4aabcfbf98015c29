package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stock-service/internal/app"
	"stock-service/internal/services"
	"stock-service/internal/sheets"
)

// stockctl report <kind> [--from 2024-06-01] [--to 2024-06-30] [--format csv] [--out file]
func (c *cli) reportCmd() *cobra.Command {
	var from, to, format, out string
	kinds := make([]string, len(services.ReportKinds))
	for i, k := range services.ReportKinds {
		kinds[i] = string(k)
	}
	cmd := &cobra.Command{
		Use:       "report <" + strings.Join(kinds, "|") + ">",
		Short:     "Print or save a report as JSON, CSV or XLSX",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := services.ParseReportKind(args[0])
			if err != nil {
				return err
			}
			var sheet sheets.Format
			if format != "json" {
				if sheet, err = sheets.ParseFormat(format); err != nil {
					return fmt.Errorf("--format must be json, csv or xlsx")
				}
			}
			if sheet == sheets.FormatXLSX && out == "" {
				return fmt.Errorf("--out is required for xlsx")
			}
			fromAt, err := parseDay(from, false)
			if err != nil {
				return err
			}
			toAt, err := parseDay(to, true)
			if err != nil {
				return err
			}

			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Reports.Generate(ctx, kind, fromAt, toAt)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				if err := writeReport(w, sheet, report); err != nil {
					return err
				}
				if out != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", out)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "sales window start, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "sales window end, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&format, "format", "json", "json, csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "write to this file instead of stdout")
	return cmd
}

func writeReport(w io.Writer, format sheets.Format, report *services.Report) error {
	if format == "" {
		return printJSON(w, report)
	}
	return sheets.Write(w, format, report.Table())
}
