package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vitaldent/clinic-site/internal/quote"
)

func newQuoteCmd() *cobra.Command {
	var (
		source   string
		policy   string
		quantity string
		discount string
	)
	cmd := &cobra.Command{
		Use:   "quote <treatment-id>",
		Short: "Compute a treatment quote from the command line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if policy == "" {
				policy = cfg.QuotePricePolicy
			}
			p, err := quote.ParsePolicy(policy)
			if err != nil {
				return err
			}
			treatments, err := loadCatalog(cmd, source)
			if err != nil {
				return err
			}
			calc := quote.NewCalculator(p, cfg.QuoteDiscountTiers, nil)
			q, err := calc.Calculate(cmd.Context(), treatments, quote.Request{
				TreatmentID: args[0],
				Quantity:    quantity,
				Discount:    discount,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Tratamiento:\t%s\n", q.TreatmentName)
			fmt.Fprintf(tw, "Rango de precio:\t%s\n", q.PriceLabel)
			fmt.Fprintf(tw, "Precio unitario:\t$%s\n", q.UnitPrice.Fixed())
			fmt.Fprintf(tw, "Cantidad:\t%d\n", q.Quantity)
			fmt.Fprintf(tw, "Subtotal:\t$%s\n", q.Subtotal.Fixed())
			fmt.Fprintf(tw, "Descuento (%d%%):\t-$%s\n", q.DiscountPercent, q.DiscountAmount.Fixed())
			fmt.Fprintf(tw, "Total:\t$%s\n", q.Total.Fixed())
			if notice := q.Notice(); notice != "" {
				fmt.Fprintf(tw, "\n%s\n", notice)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&source, "source", "", "static, remote or postgres (defaults to CATALOG_SOURCE)")
	f.StringVar(&policy, "policy", "", "mean or minimum (defaults to QUOTE_PRICE_POLICY)")
	f.StringVarP(&quantity, "cantidad", "n", "1", "quantity")
	f.StringVarP(&discount, "descuento", "d", "0", "discount percentage")
	return cmd
}
