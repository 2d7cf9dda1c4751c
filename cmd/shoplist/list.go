package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"shoplist/internal/app"
	"shoplist/internal/shop"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Manage shopping lists",
}

var listCreateCmd = &cobra.Command{
	Use:   "create [NAME]",
	Short: "Create a shopping list",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return withApp("CreateShoppingList", func(a *app.ShopApp) error {
			list, err := a.Store().CreateShoppingList(name)
			if err != nil {
				return fmt.Errorf("creating list: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", list.Name, list.ID)
			return nil
		})
	},
}

var listLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List shopping lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ListShoppingLists", func(a *app.ShopApp) error {
			lists, err := a.Store().GetShoppingLists()
			if err != nil {
				return err
			}
			if len(lists) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No shopping lists.")
				return nil
			}

			cur := currency(a.Store())
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tITEMS\tTOTAL\tUPDATED")
			for _, l := range lists {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					l.ID, l.Name, l.Status, len(l.Items), cur.format(l.Total), l.UpdatedAt.In(a.Location()).Format(dateFormat))
			}
			return tw.Flush()
		})
	},
}

var listShowCmd = &cobra.Command{
	Use:   "show [ID]",
	Short: "Show a list (the active one by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		return withApp("ShowShoppingList", func(a *app.ShopApp) error {
			list, err := a.ResolveList(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cur := currency(a.Store())
			fmt.Fprintf(out, "%s  %s  (%s)\n\n", list.ID, list.Name, list.Status)
			if len(list.Items) == 0 {
				fmt.Fprintln(out, "No items.")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "\tID\tNAME\tQTY\tPRICE\tSUBTOTAL")
			for _, it := range list.Items {
				sub := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					checkbox(it.Checked), it.ID, it.Name, it.Quantity, cur.format(it.Price), cur.format(sub))
			}
			tw.Flush()

			sum := shop.Summarize(list.Items)
			fmt.Fprintf(out, "\nTotal %s  checked %s (%d/%d)  remaining %s\n",
				cur.format(sum.Total), cur.format(sum.Checked), sum.CheckedCount, sum.ItemCount, cur.format(sum.Remaining))
			return nil
		})
	},
}

var listAddItemCmd = &cobra.Command{
	Use:   "add-item",
	Short: "Add an item to a list",
	RunE: func(cmd *cobra.Command, args []string) error {
		listID, _ := cmd.Flags().GetString("list")
		req := app.ItemRequest{}
		req.ProductID, _ = cmd.Flags().GetString("product")
		req.Name, _ = cmd.Flags().GetString("name")
		req.Quantity, _ = cmd.Flags().GetInt("qty")
		req.RawPrice, _ = cmd.Flags().GetString("price")
		req.Category, _ = cmd.Flags().GetString("category")

		return withApp("AddItemToList", func(a *app.ShopApp) error {
			list, item, err := a.AddItem(listID, req)
			if err != nil {
				return fmt.Errorf("adding item: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d x %s (%s) to %q\n", item.Quantity, item.Name, item.ID, list.Name)
			return nil
		})
	},
}

var listUpdateItemCmd = &cobra.Command{
	Use:   "update-item ITEM",
	Short: "Change an item on a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listID, _ := cmd.Flags().GetString("list")

		var patch shop.ItemPatch
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			patch.Name = &v
		}
		if cmd.Flags().Changed("qty") {
			v, _ := cmd.Flags().GetInt("qty")
			patch.Quantity = &v
		}
		if cmd.Flags().Changed("category") {
			v, _ := cmd.Flags().GetString("category")
			patch.Category = &v
		}
		if cmd.Flags().Changed("price") {
			raw, _ := cmd.Flags().GetString("price")
			v, err := app.ParsePrice(raw)
			if err != nil {
				return err
			}
			patch.Price = &v
		}

		return withApp("UpdateListItem", func(a *app.ShopApp) error {
			item, err := a.UpdateItem(listID, args[0], patch)
			if err != nil {
				return fmt.Errorf("updating item: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %d x %s\n", item.ID, item.Quantity, item.Name)
			return nil
		})
	},
}

var listCheckCmd = &cobra.Command{
	Use:   "check ITEM",
	Short: "Toggle whether an item is in the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listID, _ := cmd.Flags().GetString("list")
		return withApp("ToggleItemCheck", func(a *app.ShopApp) error {
			item, err := a.ToggleItem(listID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkbox(item.Checked), item.Name)
			return nil
		})
	},
}

var listRemoveItemCmd = &cobra.Command{
	Use:   "remove-item ITEM",
	Short: "Remove an item from a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listID, _ := cmd.Flags().GetString("list")
		return withApp("RemoveItemFromList", func(a *app.ShopApp) error {
			if err := a.RemoveItem(listID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		})
	},
}

var listStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Set a list's status (active, completed, archived)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("UpdateShoppingList", func(a *app.ShopApp) error {
			list, err := a.SetListStatus(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s\n", list.Name, list.Status)
			return nil
		})
	},
}

var listDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a shopping list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("DeleteShoppingList", func(a *app.ShopApp) error {
			if err := a.Store().DeleteShoppingList(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{listAddItemCmd, listUpdateItemCmd, listCheckCmd, listRemoveItemCmd} {
		c.Flags().StringP("list", "l", "", "List ID (default: the active list)")
	}

	listAddItemCmd.Flags().String("name", "", "Item name (default: the product's)")
	listAddItemCmd.Flags().Int("qty", 1, "Quantity")
	listAddItemCmd.Flags().String("price", "", "Unit price (default: the product's last price)")
	listAddItemCmd.Flags().String("category", "", "Category")
	listAddItemCmd.Flags().String("product", "", "Catalogued product ID to link")

	listUpdateItemCmd.Flags().String("name", "", "New name")
	listUpdateItemCmd.Flags().Int("qty", 1, "New quantity")
	listUpdateItemCmd.Flags().String("price", "", "New unit price")
	listUpdateItemCmd.Flags().String("category", "", "New category")

	listCmd.AddCommand(listCreateCmd)
	listCmd.AddCommand(listLsCmd)
	listCmd.AddCommand(listShowCmd)
	listCmd.AddCommand(listAddItemCmd)
	listCmd.AddCommand(listUpdateItemCmd)
	listCmd.AddCommand(listCheckCmd)
	listCmd.AddCommand(listRemoveItemCmd)
	listCmd.AddCommand(listStatusCmd)
	listCmd.AddCommand(listDeleteCmd)
	rootCmd.AddCommand(listCmd)
}
