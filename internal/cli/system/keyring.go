package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/dailyfix/internal/cli"
	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/keyring"
	"github.com/julianstephens/dailyfix/internal/storage/postgres"
)

// KeyringSetCmd stores the database connection string in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.ConnectionEntry().Set(cmd.ConnectionString); err != nil {
		return err
	}

	fmt.Println("✓ Connection string stored successfully in OS keyring")
	fmt.Printf("  Use it with: dailyfix --config %s\n", constants.KeyringConfigValue)
	return nil
}

// KeyringGetCmd prints the stored connection string with credentials masked
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.ConnectionEntry().Get()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'dailyfix keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	fmt.Println("Connection string retrieved from keyring:")
	fmt.Println(keyring.Mask(connStr))
	return nil
}

// KeyringDeleteCmd removes the connection string from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.ConnectionEntry().Delete(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}

	fmt.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println("✓ OS keyring is available")

	_, err := keyring.ConnectionEntry().Get()
	switch {
	case err == nil:
		fmt.Println("✓ Connection string is stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Println("ℹ No connection string stored in keyring")
	default:
		return err
	}
	return nil
}
