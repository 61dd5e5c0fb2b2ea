package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/spf13/cobra"
)

var totalsMode string

// totalsFile is the offline input for the totals command.
type totalsFile struct {
	TaxMode pricing.TaxMode       `json:"tax_mode"`
	Catalog []pricing.CatalogItem `json:"catalog"`
	Lines   []pricing.LineItem    `json:"lines"`
}

var totalsCmd = &cobra.Command{
	Use:   "totals FILE",
	Short: "Compute line breakdowns and totals for a JSON document without a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		var in totalsFile
		if err := json.Unmarshal(raw, &in); err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}

		mode := in.TaxMode
		if totalsMode != "" {
			if mode, err = pricing.ParseTaxMode(totalsMode); err != nil {
				return err
			}
		}
		if mode == "" {
			mode = pricing.TaxExclusive
		}

		for i := range in.Catalog {
			if in.Catalog[i].Kind == "" {
				in.Catalog[i].Kind = pricing.PricingFixed
			}
			if err := in.Catalog[i].Validate(); err != nil {
				return err
			}
		}
		catalog := pricing.NewCatalogMap(in.Catalog...)
		log := logger.WithComponent("totals")
		for _, l := range in.Lines {
			if id := l.CatalogItemID(); id != "" {
				if _, ok := catalog.Lookup(id); !ok {
					log.Debug().Str("line_id", l.ID).Str("catalog_item_id", id).Msg("catalog item not found, priced at 0")
				}
			}
		}

		rows, totals := pricing.ComputeBreakdown(in.Lines, catalog, mode)
		return printBreakdown(cmd.OutOrStdout(), rows, totals, mode, cfg.Settings())
	},
}

func printBreakdown(w io.Writer, rows []pricing.LineBreakdown, totals pricing.Totals, mode pricing.TaxMode, settings pricing.Settings) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "LINE\tBASE\tDISCOUNT\tNET\tTAX\tTOTAL\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.LineID,
			pricing.FormatAmount(r.BasePrice, settings),
			pricing.FormatAmount(r.DiscountAmount, settings),
			pricing.FormatAmount(r.Net, settings),
			pricing.FormatAmount(r.Tax, settings),
			pricing.FormatAmount(r.Total, settings),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTax mode:    %s\n", mode)
	fmt.Fprintf(w, "Subtotal:    %s\n", pricing.FormatAmount(totals.Subtotal, settings))
	fmt.Fprintf(w, "Tax:         %s\n", pricing.FormatAmount(totals.TaxTotal, settings))
	fmt.Fprintf(w, "Grand total: %s\n", pricing.FormatAmount(totals.GrandTotal, settings))
	return nil
}

func init() {
	totalsCmd.Flags().StringVar(&totalsMode, "mode", "", "override the file's tax mode: exclusive, inclusive or none")
}
