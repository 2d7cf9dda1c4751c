package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shoplist/internal/app"
	"shoplist/internal/model"
	"shoplist/internal/shop"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Compare recorded prices",
}

var pricesCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Show the latest price change of every product",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f shop.ComparisonFilter
		f.Query, _ = cmd.Flags().GetString("query")
		f.Category, _ = cmd.Flags().GetString("category")
		trend, _ := cmd.Flags().GetString("trend")
		f.Trend = model.Trend(trend)
		sortBy, _ := cmd.Flags().GetString("sort")

		switch f.Trend {
		case "", model.TrendIncrease, model.TrendDecrease, model.TrendStable:
		default:
			return fmt.Errorf("%w: trend must be increase, decrease or stable", shop.ErrInvalidInput)
		}

		return withApp("ComparePrices", func(a *app.ShopApp) error {
			comps, err := a.Comparisons(f, sortBy)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(comps) == 0 {
				fmt.Fprintln(out, "No products with at least two prices.")
				return nil
			}

			cur := currency(a.Store())
			tw := newTable(out)
			fmt.Fprintln(tw, "\tPRODUCT\tCATEGORY\tPREVIOUS\tCURRENT\tCHANGE\t%")
			for _, c := range comps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s%%\n",
					trendArrow(c.Trend), c.Product.Name, c.Product.Category,
					cur.format(c.PreviousPrice), cur.format(c.CurrentPrice),
					cur.format(c.Difference), c.PercentageChange.StringFixed(2))
			}
			tw.Flush()

			sum := shop.SummarizeComparisons(comps)
			fmt.Fprintf(out, "\n%d up (avg %s%%), %d down (avg %s%%), %d stable\n",
				sum.Increases, sum.AverageIncrease.StringFixed(2),
				sum.Decreases, sum.AverageDecrease.StringFixed(2), sum.Stable)
			return nil
		})
	},
}

var pricesShowCmd = &cobra.Command{
	Use:   "show PRODUCT",
	Short: "Show the latest price change of one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("GetProductPriceComparison", func(a *app.ShopApp) error {
			p, err := a.Product(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			c := shop.ComparePrices(*p)
			if c == nil {
				fmt.Fprintf(out, "%s has only one recorded price.\n", p.Name)
				return nil
			}

			cur := currency(a.Store())
			fmt.Fprintf(out, "%s %s: %s -> %s (%s, %s%%, %s)\n",
				trendArrow(c.Trend), p.Name,
				cur.format(c.PreviousPrice), cur.format(c.CurrentPrice),
				cur.format(c.Difference), c.PercentageChange.StringFixed(2), c.Trend)
			return nil
		})
	},
}

func init() {
	pricesCompareCmd.Flags().String("trend", "", "Only increase, decrease or stable")
	pricesCompareCmd.Flags().String("category", "", "Only products in this category")
	pricesCompareCmd.Flags().StringP("query", "q", "", "Match product names")
	pricesCompareCmd.Flags().String("sort", shop.SortByPercentage, "Sort by percentage, difference, name or price")

	pricesCmd.AddCommand(pricesCompareCmd)
	pricesCmd.AddCommand(pricesShowCmd)
	rootCmd.AddCommand(pricesCmd)
}
