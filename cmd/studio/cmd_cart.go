package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Stage designs and check out",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add [design-id]",
	Short: "Add the active draft (or a saved design) to the cart",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCartAdd,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a cart item",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

var cartFormatsCmd = &cobra.Command{
	Use:   "formats [format]",
	Short: "Show or toggle the checkout format selection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCartFormats,
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place the order (spends tokens)",
	Args:  cobra.NoArgs,
	RunE:  runCartCheckout,
}

func init() {
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartClearCmd, cartFormatsCmd, cartCheckoutCmd)
}

func runCartShow(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	items, err := studio.Cart.Load(cmd.Context())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("Cart is empty.")
		return nil
	}
	for _, item := range items {
		name := item.DesignDetails.Name
		if name == "" {
			name = truncate(item.DesignDetails.Prompt, 40)
		}
		fmt.Printf("%6d  design %-6d %s\n", item.ID, item.DesignID, name)
	}
	fmt.Printf("\nFormats: %s\n", strings.Join(studio.Cart.SelectedFormats(), ", "))
	fmt.Printf("Cost:    %d tokens (balance %d)\n",
		studio.Checkout.TotalCost(cmd.Context()), studio.Tokens.Balance())
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	if len(args) == 1 {
		designID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid design id %q", args[0])
		}
		if err := studio.Cart.Add(cmd.Context(), designID); err != nil {
			return err
		}
	} else if err := studio.Cart.AddActiveDraft(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Cart has %d item(s).\n", studio.Cart.Count())
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	itemID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}
	if err := studio.Cart.Remove(cmd.Context(), itemID); err != nil {
		return err
	}
	fmt.Printf("Cart has %d item(s).\n", studio.Cart.Count())
	return nil
}

func runCartClear(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	if err := studio.Cart.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Cart cleared.")
	return nil
}

func runCartFormats(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	if _, err := studio.Cart.Load(cmd.Context()); err != nil {
		return err
	}
	if len(args) == 1 {
		if err := studio.Cart.ToggleFormat(cmd.Context(), args[0]); err != nil {
			return err
		}
	}
	fmt.Printf("Formats: %s\n", strings.Join(studio.Cart.SelectedFormats(), ", "))
	return nil
}

func runCartCheckout(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	if _, err := studio.Cart.Load(cmd.Context()); err != nil {
		return err
	}

	orders, err := studio.Checkout.PlaceOrder(cmd.Context())
	if err != nil {
		return err
	}

	for _, order := range orders {
		fmt.Printf("Order #%d placed (%s), %d token(s) spent.\n",
			order.ID, order.Status, order.TokensSpent)
	}
	fmt.Printf("Token balance: %d\n", studio.Tokens.Balance())
	return nil
}
