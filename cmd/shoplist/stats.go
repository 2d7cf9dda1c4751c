package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"shoplist/internal/app"
	"shoplist/internal/shop"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Spending statistics",
}

var statsMonthCmd = &cobra.Command{
	Use:   "month",
	Short: "Total spent in a month (or a whole year with --month 0)",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")

		return withApp("MonthlySpending", func(a *app.ShopApp) error {
			now := time.Now().In(a.Location())
			if year == 0 {
				year = now.Year()
			}
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}

			total, err := a.MonthlySpending(year, month)
			if err != nil {
				return err
			}
			period := fmt.Sprintf("%04d-%02d", year, month)
			if month == shop.AllMonths {
				period = fmt.Sprintf("%04d", year)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", period, currency(a.Store()).format(total))
			return nil
		})
	},
}

var statsStoresCmd = &cobra.Command{
	Use:   "stores",
	Short: "Total spent per store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("SpendingByStore", func(a *app.ShopApp) error {
			history, err := a.Store().GetPurchaseHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			byStore := shop.SpendingByStore(history)
			if len(byStore) == 0 {
				fmt.Fprintln(out, "No purchases yet.")
				return nil
			}

			stores := make([]string, 0, len(byStore))
			for s := range byStore {
				stores = append(stores, s)
			}
			sort.Slice(stores, func(i, j int) bool {
				if c := byStore[stores[i]].Cmp(byStore[stores[j]]); c != 0 {
					return c > 0
				}
				return stores[i] < stores[j]
			})

			cur := currency(a.Store())
			tw := newTable(out)
			fmt.Fprintln(tw, "STORE\tSPENT")
			for _, s := range stores {
				fmt.Fprintf(tw, "%s\t%s\n", s, cur.format(byStore[s]))
			}
			return tw.Flush()
		})
	},
}

var statsTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Most frequently purchased products",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("n")

		return withApp("TopProducts", func(a *app.ShopApp) error {
			history, err := a.Store().GetPurchaseHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			top := shop.TopProducts(history, n)
			if len(top) == 0 {
				fmt.Fprintln(out, "No purchases yet.")
				return nil
			}

			cur := currency(a.Store())
			tw := newTable(out)
			fmt.Fprintln(tw, "#\tPRODUCT\tCOUNT\tSPENT\tAVG PRICE")
			for i, st := range top {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", i+1, st.Name, st.Count, cur.format(st.TotalSpent), cur.format(st.AveragePrice))
			}
			return tw.Flush()
		})
	},
}

func init() {
	statsMonthCmd.Flags().Int("year", 0, "Year (default: this year)")
	statsMonthCmd.Flags().Int("month", 0, "Month 1-12, or 0 for the whole year (default: this month)")
	statsTopCmd.Flags().IntP("n", "n", 10, "Number of products to show (0 for all)")

	statsCmd.AddCommand(statsMonthCmd)
	statsCmd.AddCommand(statsStoresCmd)
	statsCmd.AddCommand(statsTopCmd)
	rootCmd.AddCommand(statsCmd)
}
