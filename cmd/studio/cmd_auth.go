package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stitchforge/embroidery-studio/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and store the session locally",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := promptSecret("Password: ")
	if err != nil {
		return err
	}

	user, err := studio.Auth.SignIn(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s\n", user.DisplayName())
	studio.Nav.ApplyProfile(cmd.Context(), user)
	if user.IsAdmin() {
		fmt.Println("Staff account: admin commands are available.")
	}

	balance, err := studio.Tokens.Refresh(cmd.Context())
	if err == nil {
		fmt.Printf("Token balance: %d\n", balance)
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := promptSecret("Password: ")
	if err != nil {
		return err
	}

	user, message, err := studio.Auth.SignUp(cmd.Context(), auth.SignUpInput{
		Username: args[0],
		Email:    args[1],
		Password: password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s\n", user.Username)
	if message != "" {
		fmt.Println(message)
	}
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	studio.Auth.SignOut(cmd.Context())
	studio.Tokens.Forget()
	studio.Cart.Forget()
	fmt.Println("Signed out.")
	return nil
}

func runProfile(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	user, err := studio.Auth.Profile(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email:    %s", user.Email)
	if !user.EmailVerified {
		fmt.Print(" (unverified)")
	}
	fmt.Println()
	if user.FullName != "" {
		fmt.Printf("Name:     %s\n", user.FullName)
	}
	if user.IsAdmin() {
		fmt.Println("Role:     staff")
	}
	return nil
}

// promptSecret reads a line from stdin. Passwords arrive over a pipe in
// scripted use, so no terminal echo handling here.
func promptSecret(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
