package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"tweetscraper/pkg/auth"
	"tweetscraper/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Twitter session cookies",
	Long: `Manage stored Twitter session cookies.

Cookies are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (TWEETSCRAPER_AUTH_TOKEN, TWEETSCRAPER_CT0)

Never share your cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store session cookies securely",
	Long: `Store the auth_token and ct0 cookies of a Twitter session.

You will be prompted for:
  - Account name (if not provided)
  - auth_token cookie
  - ct0 cookie
  - User Agent (optional, press Enter for default)`,
	Example: `  # Interactive login
  tweetscraper auth login

  # Login with an account name
  tweetscraper auth login myaccount`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <username>",
	Short: "Remove stored cookies",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with masked cookie values. The first one is used by default.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	auth.PrintCookieGuide(ui.Output)
	fmt.Fprintln(ui.Output)

	var username string
	if len(args) > 0 {
		username = strings.TrimSpace(args[0])
	} else {
		fmt.Fprint(ui.Output, "Account name: ")
		username, err = readLine(reader)
		if err != nil {
			return fmt.Errorf("failed to read account name: %w", err)
		}
	}
	if username == "" {
		return fmt.Errorf("account name is required")
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		fmt.Fprintf(ui.Output, "Account '%s' already exists. Update cookies? (y/N): ", username)
		answer, _ := readLine(reader)
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	fmt.Fprintln(ui.Output, "\nEnter your cookie values (hidden as you type):")

	fmt.Fprint(ui.Output, "auth_token: ")
	authToken, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read auth_token: %w", err)
	}

	fmt.Fprint(ui.Output, "ct0: ")
	ct0, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read ct0: %w", err)
	}

	fmt.Fprint(ui.Output, "User Agent (press Enter to use default): ")
	userAgent, _ := readLine(reader)

	account := &auth.Account{
		Username:     username,
		AuthToken:    authToken,
		CT0:          ct0,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}
	if err := account.Validate(); err != nil {
		return err
	}

	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store cookies: %w", err)
	}

	ui.PrintSuccess("Account saved: " + username)
	fmt.Fprintln(ui.Output, "\nUse it with:")
	fmt.Fprintf(ui.Output, "  tweetscraper scrape --input tweets.csv --account %s\n", username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	username := args[0]
	if err := manager.Delete(username); err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}
	ui.PrintSuccess("Account removed: " + username)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'tweetscraper auth login' to add an account")
		return nil
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Fprintln(ui.Output)

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Fprintf(ui.Output, "%d. Username: %s\n", i+1, sanitized.Username)
		fmt.Fprintf(ui.Output, "   auth_token: %s\n", sanitized.AuthToken)
		fmt.Fprintf(ui.Output, "   ct0: %s\n", sanitized.CT0)
		if sanitized.UserAgent != "" {
			fmt.Fprintf(ui.Output, "   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Fprintf(ui.Output, "   Last Modified: %s\n\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func readLine(reader *bufio.Reader) (string, error) {
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readSecret reads a value from stdin without echoing when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(ui.Output)
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}
	return readLine(reader)
}
