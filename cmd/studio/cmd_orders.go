package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stitchforge/embroidery-studio/pkg/pagination"
)

var (
	ordersPage   int
	downloadDest string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Track placed orders",
	Args:  cobra.NoArgs,
	RunE:  runOrdersList,
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	Args:  cobra.NoArgs,
	RunE:  runOrdersList,
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersShow,
}

var ordersDownloadCmd = &cobra.Command{
	Use:   "download <order-id> <format>",
	Short: "Download a produced embroidery file",
	Args:  cobra.ExactArgs(2),
	RunE:  runOrdersDownload,
}

var ordersRetryCmd = &cobra.Command{
	Use:   "retry <order-id>",
	Short: "Retry a failed order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersRetry,
}

func init() {
	ordersListCmd.Flags().IntVar(&ordersPage, "page", 1, "page number")
	ordersDownloadCmd.Flags().StringVar(&downloadDest, "dest", ".", "destination directory")
	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd, ordersDownloadCmd, ordersRetryCmd)
}

func runOrdersList(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	orders, err := studio.Orders.List(cmd.Context(), pagination.Params{Page: ordersPage})
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}
	for _, order := range orders {
		fmt.Printf("%6d  %-12s %2d item(s)  %s\n",
			order.ID, order.Status, len(order.Items), order.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runOrdersShow(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	orderID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}
	order, err := studio.Orders.Get(cmd.Context(), orderID)
	if err != nil {
		return err
	}

	fmt.Printf("Order #%d: %s\n", order.ID, order.Status)
	fmt.Printf("Formats:  %v\n", order.RequestedFormats)
	fmt.Printf("Tokens:   %d\n", order.TokensSpent)
	for _, item := range order.Items {
		name := item.DesignDetails.Name
		if name == "" {
			name = truncate(item.DesignDetails.Prompt, 40)
		}
		fmt.Printf("  design %-6d %s\n", item.DesignID, name)
	}
	return nil
}

func runOrdersDownload(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	orderID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}
	path, err := studio.Orders.Download(cmd.Context(), orderID, args[1], downloadDest)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

func runOrdersRetry(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	orderID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}
	order, err := studio.Orders.Retry(cmd.Context(), orderID)
	if err != nil {
		return err
	}
	fmt.Printf("Order #%d is %s again.\n", order.ID, order.Status)
	return nil
}
