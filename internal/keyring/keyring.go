// Package keyring keeps the PostgreSQL connection string in the OS keyring
// so it never has to appear in config files or shell history.
package keyring

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/dailyfix/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry addresses one secret in the OS keyring.
type Entry struct {
	Service string
	User    string
}

// ConnectionEntry is where the database connection string lives.
func ConnectionEntry() Entry {
	return Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

// Get returns the stored secret, or ErrNotFound.
func (e Entry) Get() (string, error) {
	secret, err := keyring.Get(e.Service, e.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores secret, replacing any previous value.
func (e Entry) Set(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(e.Service, e.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the secret, or returns ErrNotFound.
func (e Entry) Delete() error {
	err := keyring.Delete(e.Service, e.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable is a best-effort probe: a lookup that fails with anything other
// than "not found" means there is no usable keyring.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Mask hides the user and password of a URL-style connection string for
// display. DSN strings only get their password value hidden.
func Mask(connStr string) string {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" && u.Host != "" {
		if u.User != nil {
			u.User = url.User("***")
		}
		return u.String()
	}
	fields := strings.Fields(connStr)
	for i, f := range fields {
		if k, _, ok := strings.Cut(f, "="); ok && strings.EqualFold(k, "password") {
			fields[i] = k + "=***"
		}
	}
	return strings.Join(fields, " ")
}
