package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stitchforge/embroidery-studio/pkg/pagination"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Token balance and purchases",
	Args:  cobra.NoArgs,
	RunE:  runTokensBalance,
}

var tokensBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the token balance",
	Args:  cobra.NoArgs,
	RunE:  runTokensBalance,
}

var tokensCostsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Show what actions cost",
	Args:  cobra.NoArgs,
	RunE:  runTokensCosts,
}

var tokensPackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List purchasable token packages",
	Args:  cobra.NoArgs,
	RunE:  runTokensPackages,
}

var tokensBuyCmd = &cobra.Command{
	Use:   "buy <package-id>",
	Short: "Start a token package purchase",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensBuy,
}

var tokensVerifyCmd = &cobra.Command{
	Use:   "verify <session-id>",
	Short: "Complete a purchase after paying",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensVerify,
}

var tokensHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the token ledger",
	Args:  cobra.NoArgs,
	RunE:  runTokensHistory,
}

func init() {
	tokensCmd.AddCommand(
		tokensBalanceCmd, tokensCostsCmd, tokensPackagesCmd,
		tokensBuyCmd, tokensVerifyCmd, tokensHistoryCmd,
	)
}

func runTokensBalance(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	balance, err := studio.Tokens.Refresh(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Token balance: %d\n", balance)
	return nil
}

func runTokensCosts(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	costs := studio.Tokens.Costs(cmd.Context())
	fmt.Printf("AI image generation: %d token(s)\n", costs.AIImageGeneration)
	fmt.Printf("Order placement:     %d token(s) per item\n", costs.OrderPlacement)
	return nil
}

func runTokensPackages(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	packages, err := studio.Tokens.Packages(cmd.Context())
	if err != nil {
		return err
	}
	for _, pkg := range packages {
		marker := " "
		if pkg.IsPopular {
			marker = "*"
		}
		fmt.Printf("%s %4d  %-12s %4d tokens  %s %s\n",
			marker, pkg.ID, pkg.Name, pkg.Tokens, pkg.Price.StringFixed(2), pkg.Currency)
	}
	return nil
}

func runTokensBuy(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	packageID, err := parseID(args[0], "package")
	if err != nil {
		return err
	}
	session, err := studio.Tokens.StartPurchase(cmd.Context(), packageID)
	if err != nil {
		return err
	}
	fmt.Printf("Pay at: %s\n", session.URL)
	fmt.Printf("Then run: studio tokens verify %s\n", session.SessionID)
	return nil
}

func runTokensVerify(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	added, err := studio.Tokens.CompletePurchase(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Added %d token(s). Balance: %d\n", added, studio.Tokens.Balance())
	return nil
}

func runTokensHistory(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	transactions, err := studio.Tokens.Transactions(cmd.Context(), pagination.Params{})
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		fmt.Println("No transactions yet.")
		return nil
	}
	for _, tx := range transactions {
		fmt.Printf("%6d  %+4d  %-10s %s\n", tx.ID, tx.Amount, tx.Kind, tx.Description)
	}
	return nil
}
