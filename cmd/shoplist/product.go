package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shoplist/internal/app"
	"shoplist/internal/model"
	"shoplist/internal/shop"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage the product catalogue",
}

var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a product with its current price",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		price, _ := cmd.Flags().GetString("price")
		store, _ := cmd.Flags().GetString("store")
		category, _ := cmd.Flags().GetString("category")

		return withApp("AddProduct", func(a *app.ShopApp) error {
			p, err := a.AddProduct(name, category, price, store)
			if err != nil {
				return fmt.Errorf("adding product: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) at %s\n", p.Name, p.ID, currency(a.Store()).format(p.LastPrice))
			return nil
		})
	},
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")

		return withApp("ListProducts", func(a *app.ShopApp) error {
			products, err := a.Store().SearchProducts(search)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products found.")
				return nil
			}

			cur := currency(a.Store())
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tLAST PRICE\tPRICES")
			for _, p := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, cur.format(p.LastPrice), len(p.PriceHistory))
			}
			fmt.Fprintf(tw, "\t%d products\t%d categories\tavg %s\t\n",
				len(products), len(shop.Categories(products)), cur.format(shop.AverageLastPrice(products)))
			return tw.Flush()
		})
	},
}

var productShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a product and its price history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ShowProduct", func(a *app.ShopApp) error {
			p, err := a.Product(args[0])
			if err != nil {
				return err
			}
			printProduct(cmd, a, p)
			return nil
		})
	},
}

func printProduct(cmd *cobra.Command, a *app.ShopApp, p *model.Product) {
	out := cmd.OutOrStdout()
	cur := currency(a.Store())
	fmt.Fprintf(out, "%s  %s  [%s]\n", p.ID, p.Name, p.Category)
	fmt.Fprintf(out, "Last price: %s\n\n", cur.format(p.LastPrice))

	tw := newTable(out)
	fmt.Fprintln(tw, "DATE\tPRICE\tSTORE")
	for _, e := range p.PriceHistory {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Date.In(a.Location()).Format(dateFormat), cur.format(e.Price), e.Store)
	}
	tw.Flush()
}

var productUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename or recategorize a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch shop.ProductPatch
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("category") {
			category, _ := cmd.Flags().GetString("category")
			patch.Category = &category
		}

		return withApp("UpdateProduct", func(a *app.ShopApp) error {
			p, err := a.UpdateProduct(args[0], patch)
			if err != nil {
				return fmt.Errorf("updating product: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s [%s]\n", p.ID, p.Name, p.Category)
			return nil
		})
	},
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a product from the catalogue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("DeleteProduct", func(a *app.ShopApp) error {
			if err := a.Store().DeleteProduct(args[0]); err != nil {
				return fmt.Errorf("deleting product: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	productAddCmd.Flags().String("name", "", "Product name")
	productAddCmd.Flags().String("price", "0", "Current price")
	productAddCmd.Flags().String("store", "", "Store where the price was seen")
	productAddCmd.Flags().String("category", "", "Category (default General)")
	productAddCmd.MarkFlagRequired("name")

	productListCmd.Flags().StringP("search", "s", "", "Match name or category")

	productUpdateCmd.Flags().String("name", "", "New name")
	productUpdateCmd.Flags().String("category", "", "New category")

	productCmd.AddCommand(productAddCmd)
	productCmd.AddCommand(productListCmd)
	productCmd.AddCommand(productShowCmd)
	productCmd.AddCommand(productUpdateCmd)
	productCmd.AddCommand(productDeleteCmd)
	rootCmd.AddCommand(productCmd)
}
