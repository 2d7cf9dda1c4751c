package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shoplist/internal/app"
	"shoplist/internal/shop"
)

var purchaseCmd = &cobra.Command{
	Use:   "purchase",
	Short: "Record purchases",
}

var purchaseSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the checked items of a list as a purchase",
	RunE: func(cmd *cobra.Command, args []string) error {
		listID, _ := cmd.Flags().GetString("list")
		store, _ := cmd.Flags().GetString("store")

		return withApp("SavePurchase", func(a *app.ShopApp) error {
			p, err := a.SavePurchase(listID, store)
			if err != nil {
				return fmt.Errorf("saving purchase: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved purchase %s: %d item(s), %s\n",
				p.ID, len(p.Items), currency(a.Store()).format(p.Total))
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse purchase history",
}

func historyFilter(cmd *cobra.Command) shop.HistoryFilter {
	var f shop.HistoryFilter
	f.Year, _ = cmd.Flags().GetInt("year")
	f.Month, _ = cmd.Flags().GetInt("month")
	f.Store, _ = cmd.Flags().GetString("store")
	f.Query, _ = cmd.Flags().GetString("query")
	return f
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List purchases, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := historyFilter(cmd)

		return withApp("GetPurchaseHistory", func(a *app.ShopApp) error {
			history, err := a.History(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(history) == 0 {
				fmt.Fprintln(out, "No purchases found.")
				return nil
			}

			cur := currency(a.Store())
			tw := newTable(out)
			fmt.Fprintln(tw, "DATE\tLIST\tSTORE\tITEMS\tTOTAL")
			for _, p := range history {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					p.PurchaseDate.In(a.Location()).Format(dateFormat), p.ListName, orDefault(p.Store, "-"), len(p.Items), cur.format(p.Total))
			}
			tw.Flush()

			fmt.Fprintf(out, "\n%d purchase(s), spent %s, average %s\n",
				len(history), cur.format(shop.TotalSpent(history)), cur.format(shop.AveragePurchase(history)))
			return nil
		})
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the purchase history as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := historyFilter(cmd)

		return withApp("ExportHistory", func(a *app.ShopApp) error {
			n, err := a.ExportHistoryToFile(args[0], f)
			if err != nil {
				return fmt.Errorf("exporting history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d purchase(s) to %s\n", n, args[0])
			return nil
		})
	},
}

func init() {
	purchaseSaveCmd.Flags().StringP("list", "l", "", "List ID (default: the active list)")
	purchaseSaveCmd.Flags().String("store", "", "Store where the purchase was made")

	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().Int("year", 0, "Only purchases in this year")
		c.Flags().Int("month", 0, "Only purchases in this month (1-12)")
		c.Flags().String("store", "", "Only purchases at this store")
		c.Flags().StringP("query", "q", "", "Match list, store or item names")
	}

	purchaseCmd.AddCommand(purchaseSaveCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(purchaseCmd)
	rootCmd.AddCommand(historyCmd)
}
