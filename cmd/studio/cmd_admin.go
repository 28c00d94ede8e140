package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/stitchforge/embroidery-studio/internal/admin"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/pagination"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

var (
	tierMin      int
	tierMax      int
	tierPrice    string
	tierCurrency string

	pkgName     string
	pkgTokens   int
	pkgPrice    string
	pkgCurrency string
	pkgInactive bool

	costGeneration int
	costOrder      int
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Staff operations",
}

var adminOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List every customer's orders",
	Args:  cobra.NoArgs,
	RunE:  runAdminOrders,
}

var adminOrderStatusCmd = &cobra.Command{
	Use:   "order-status <order-id> <status>",
	Short: "Move an order to another status",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminOrderStatus,
}

var adminResourcesCmd = &cobra.Command{
	Use:   "resources <order-id>",
	Short: "List an order's produced files",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminResources,
}

var adminDeleteResourceCmd = &cobra.Command{
	Use:   "delete-resource <resource-id>",
	Short: "Delete a produced file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminDeleteResource,
}

var adminPricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "List size pricing tiers",
	Args:  cobra.NoArgs,
	RunE:  runAdminPricing,
}

var adminPricingAddCmd = &cobra.Command{
	Use:   "pricing-add",
	Short: "Create a size pricing tier",
	Args:  cobra.NoArgs,
	RunE:  runAdminPricingAdd,
}

var adminPricingDeleteCmd = &cobra.Command{
	Use:   "pricing-delete <tier-id>",
	Short: "Delete a size pricing tier",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminPricingDelete,
}

var adminCostsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Show or set the token costs",
	Args:  cobra.NoArgs,
	RunE:  runAdminCosts,
}

var adminPackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List token packages, active or not",
	Args:  cobra.NoArgs,
	RunE:  runAdminPackages,
}

var adminPackageAddCmd = &cobra.Command{
	Use:   "package-add",
	Short: "Create a token package",
	Args:  cobra.NoArgs,
	RunE:  runAdminPackageAdd,
}

var adminPackageDeleteCmd = &cobra.Command{
	Use:   "package-delete <package-id>",
	Short: "Delete a token package",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminPackageDelete,
}

var adminPackagePopularCmd = &cobra.Command{
	Use:   "package-popular <package-id>",
	Short: "Highlight a package as the popular pick",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminPackagePopular,
}

func init() {
	adminPricingAddCmd.Flags().IntVar(&tierMin, "min", 0, "minimum size in cm")
	adminPricingAddCmd.Flags().IntVar(&tierMax, "max", 0, "maximum size in cm")
	adminPricingAddCmd.Flags().StringVar(&tierPrice, "price", "", "price, e.g. 3.50")
	adminPricingAddCmd.Flags().StringVar(&tierCurrency, "currency", "USD", "currency code")

	adminPackageAddCmd.Flags().StringVar(&pkgName, "name", "", "package name")
	adminPackageAddCmd.Flags().IntVar(&pkgTokens, "tokens", 0, "tokens granted")
	adminPackageAddCmd.Flags().StringVar(&pkgPrice, "price", "0", "price, e.g. 19.99")
	adminPackageAddCmd.Flags().StringVar(&pkgCurrency, "currency", "USD", "currency code")
	adminPackageAddCmd.Flags().BoolVar(&pkgInactive, "inactive", false, "create hidden from customers")

	adminCostsCmd.Flags().IntVar(&costGeneration, "generation", 0, "set AI image generation cost")
	adminCostsCmd.Flags().IntVar(&costOrder, "order", 0, "set per-item order cost")

	adminCmd.AddCommand(
		adminOrdersCmd, adminOrderStatusCmd, adminResourcesCmd, adminDeleteResourceCmd,
		adminPricingCmd, adminPricingAddCmd, adminPricingDeleteCmd,
		adminCostsCmd, adminPackagesCmd, adminPackageAddCmd,
		adminPackageDeleteCmd, adminPackagePopularCmd,
	)
}

func requireStaff(cmd *cobra.Command) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	user, err := studio.Auth.Profile(cmd.Context())
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff access required")
	}
	return nil
}

func runAdminOrders(cmd *cobra.Command, _ []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	orders, err := studio.Admin.Orders(cmd.Context(), pagination.Params{})
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders.")
		return nil
	}
	for _, order := range orders {
		fmt.Printf("%6d  %-12s %2d item(s)  %s\n",
			order.ID, order.Status, len(order.Items), order.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runAdminOrderStatus(cmd *cobra.Command, args []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	orderID, err := parseID(args[0], "order")
	if err != nil {
		return err
	}
	if err := studio.Admin.SetOrderStatus(cmd.Context(), orderID, args[1]); err != nil {
		return err
	}
	fmt.Printf("Order #%d is now %s.\n", orderID, args[1])
	return nil
}

func runAdminResources(cmd *cobra.Command, args []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	orderID, err := parseID(args[0], "order")
	if err != nil {
		return err
	}
	resources, err := studio.Admin.OrderResources(cmd.Context(), orderID)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		fmt.Println("No resources.")
		return nil
	}
	for _, res := range resources {
		fmt.Printf("%6d  %-5s %s\n", res.ID, res.Format, res.FileName)
	}
	return nil
}

func runAdminDeleteResource(cmd *cobra.Command, args []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	resourceID, err := parseID(args[0], "resource")
	if err != nil {
		return err
	}
	if err := studio.Admin.DeleteResource(cmd.Context(), resourceID); err != nil {
		return err
	}
	fmt.Println("Resource deleted.")
	return nil
}

func runAdminPricing(cmd *cobra.Command, _ []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	tiers, err := studio.Admin.PricingTiers(cmd.Context())
	if err != nil {
		return err
	}
	for _, tier := range tiers {
		fmt.Printf("%6d  %3d-%3d cm  %s %s\n",
			tier.ID, tier.MinSizeCm, tier.MaxSizeCm, tier.Price.StringFixed(2), tier.Currency)
	}
	return nil
}

func runAdminPricingAdd(cmd *cobra.Command, _ []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	price, err := decimal.NewFromString(tierPrice)
	if err != nil {
		return fmt.Errorf("invalid price %q", tierPrice)
	}
	tier, err := studio.Admin.CreatePricingTier(cmd.Context(), admin.PricingTierInput{
		MinSizeCm: tierMin,
		MaxSizeCm: tierMax,
		Price:     price,
		Currency:  tierCurrency,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created tier #%d.\n", tier.ID)
	return nil
}

func runAdminPricingDelete(cmd *cobra.Command, args []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	tierID, err := parseID(args[0], "tier")
	if err != nil {
		return err
	}
	if err := studio.Admin.DeletePricingTier(cmd.Context(), tierID); err != nil {
		return err
	}
	fmt.Println("Tier deleted.")
	return nil
}

func runAdminCosts(cmd *cobra.Command, _ []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}

	if costGeneration > 0 || costOrder > 0 {
		costs := types.TokenCosts{AIImageGeneration: costGeneration, OrderPlacement: costOrder}
		if err := studio.Admin.SetTokenCosts(cmd.Context(), costs); err != nil {
			return err
		}
		fmt.Println("Token costs updated.")
		return nil
	}

	costs, err := studio.Admin.TokenCosts(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("AI image generation: %d token(s)\n", costs.AIImageGeneration)
	fmt.Printf("Order placement:     %d token(s) per item\n", costs.OrderPlacement)
	return nil
}

func runAdminPackages(cmd *cobra.Command, _ []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	packages, err := studio.Admin.Packages(cmd.Context())
	if err != nil {
		return err
	}
	for _, pkg := range packages {
		flags := ""
		if pkg.IsPopular {
			flags += " popular"
		}
		if !pkg.IsActive {
			flags += " inactive"
		}
		fmt.Printf("%6d  %-12s %4d tokens  %s %s%s\n",
			pkg.ID, pkg.Name, pkg.Tokens, pkg.Price.StringFixed(2), pkg.Currency, flags)
	}
	return nil
}

func runAdminPackageAdd(cmd *cobra.Command, _ []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	price, err := decimal.NewFromString(pkgPrice)
	if err != nil {
		return fmt.Errorf("invalid price %q", pkgPrice)
	}
	pkg, err := studio.Admin.CreatePackage(cmd.Context(), admin.PackageInput{
		Name:     pkgName,
		Tokens:   pkgTokens,
		Price:    price,
		Currency: pkgCurrency,
		IsActive: !pkgInactive,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created package #%d.\n", pkg.ID)
	return nil
}

func runAdminPackageDelete(cmd *cobra.Command, args []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	packageID, err := parseID(args[0], "package")
	if err != nil {
		return err
	}
	if err := studio.Admin.DeletePackage(cmd.Context(), packageID); err != nil {
		return err
	}
	fmt.Println("Package deleted.")
	return nil
}

func runAdminPackagePopular(cmd *cobra.Command, args []string) error {
	if err := requireStaff(cmd); err != nil {
		return err
	}
	packageID, err := parseID(args[0], "package")
	if err != nil {
		return err
	}
	if err := studio.Admin.MarkPopular(cmd.Context(), packageID); err != nil {
		return err
	}
	fmt.Println("Package highlighted.")
	return nil
}
