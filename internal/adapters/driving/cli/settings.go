package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// passwordKey is the setting written by "settings password".
const passwordKey = "postgres.password"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the record store and sync behaviour.

Settings live in ~/.docsync/config.toml. DOCSYNC_* and POSTGRES_* environment
variables (also read from a .env file) override the stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a single setting",
	Long: `Sets a single setting by its dot-notation key, e.g.

  docsync settings set store.driver postgres
  docsync settings set sync.continue_on_error true

Run "docsync settings keys" for the list of keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	RunE:  runSettingsKeys,
}

var settingsPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Set the PostgreSQL password",
	Long:  `Prompts for the PostgreSQL password without echoing it and stores it in the config file.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsPassword,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsPasswordCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Driver: %s\n", settings.Driver.Description())
	if settings.Driver == domain.StoreSQLite {
		dataDir := settings.DataDir
		if dataDir == "" {
			dataDir = "(default)"
		}
		cmd.Printf("  Data dir: %s\n", dataDir)
	}
	cmd.Println()

	cmd.Println("[PostgreSQL]")
	cmd.Printf("  Host: %s\n", settings.Postgres.Host)
	cmd.Printf("  Port: %d\n", settings.Postgres.Port)
	cmd.Printf("  User: %s\n", settings.Postgres.User)
	if settings.Postgres.Password != "" {
		cmd.Printf("  Password: %s\n", maskSecret(settings.Postgres.Password))
	} else {
		cmd.Printf("  Password: (not set)\n")
	}
	cmd.Printf("  Database: %s\n", settings.Postgres.DBName)
	cmd.Printf("  SSL mode: %s\n", settings.Postgres.SSLMode)
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Continue on error: %s\n", yesNo(settings.Sync.ContinueOnError))
	cmd.Printf("  Track sessions: %s\n", yesNo(settings.Sync.TrackSessions))
	cmd.Printf("  Fill missing hash: %s\n", yesNo(settings.Sync.FillMissingHash))

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if key == passwordKey {
		value = maskSecret(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsPassword(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("PostgreSQL password: ")
	password := readPassword()
	cmd.Println()

	if password == "" {
		return fmt.Errorf("%w: empty password", domain.ErrInvalidInput)
	}
	if err := settingsService.Set(passwordKey, password); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}

	cmd.Println("Password saved.")
	return nil
}

// Helper functions.

// passwordInput is read when stdin is not a terminal.
var passwordInput = func() *os.File { return os.Stdin }

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	in := passwordInput()
	// Try to read password without echo
	if term.IsTerminal(int(in.Fd())) {
		password, err := term.ReadPassword(int(in.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:2] + "..." + secret[len(secret)-2:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
