package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dailyflow/dailyreset/internal/client"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the Daily Reset server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)

	loginCmd.Flags().String("email", "", "Login using magic link for this email")
	loginCmd.Flags().String("token", "", "Verify magic link token")
	registerCmd.Flags().String("timezone", "", "IANA timezone for your day boundary (default UTC)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := client.New(cfg.ServerURL)
	if err != nil {
		return err
	}

	// Check for magic link flags
	email, _ := cmd.Flags().GetString("email")
	token, _ := cmd.Flags().GetString("token")

	if token != "" {
		fmt.Println("Verifying magic link token...")
		if err := c.VerifyMagicLink(token); err != nil {
			return err
		}
		fmt.Println("Logged in successfully!")
		return nil
	}

	if email != "" {
		fmt.Printf("Requesting magic link for %s...\n", email)
		devToken, err := c.RequestMagicLink(email)
		if err != nil {
			return err
		}
		fmt.Println("Magic link requested! Check your email (or server logs in dev).")
		if devToken != "" {
			fmt.Printf("Development token: %s\n", devToken)
		}

		// Prompt for token interactively
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Enter magic link token: ")
		inputToken, _ := reader.ReadString('\n')
		inputToken = strings.TrimSpace(inputToken)

		if inputToken == "" {
			fmt.Println("Token required.")
			return nil
		}

		if err := c.VerifyMagicLink(inputToken); err != nil {
			return err
		}
		fmt.Println("Logged in successfully!")
		return nil
	}

	// Normal password login
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	if err := c.Login(username, password); err != nil {
		return err
	}

	fmt.Println("Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := client.New(cfg.ServerURL)
	if err != nil {
		return err
	}

	if err := c.Logout(); err != nil {
		return err
	}

	fmt.Println("Logged out.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	c, err := client.New(cfg.ServerURL)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password (min 8 chars): ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	timezone, _ := cmd.Flags().GetString("timezone")

	if err := c.Register(username, email, password, timezone); err != nil {
		return err
	}

	fmt.Println("Account created and logged in!")
	return nil
}
