package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringUser is the account name of the API key in the OS keyring.
const keyringUser = "api-key"

// Where a credential was found.
const (
	SourceEnv     = "environment"
	SourceKeyring = "keyring"
	SourceNone    = "none"
)

// Credentials resolves the Codemagic API key on every call: the
// CODEMAGIC_API_KEY environment variable first, then the OS keyring. It
// implements codemagic.CredentialSource.
type Credentials struct{}

// Credential returns the API key, or "" when none is configured.
func (Credentials) Credential() (string, error) {
	key, _, err := lookup()
	return key, err
}

// Source reports where the API key currently comes from.
func (Credentials) Source() (string, error) {
	_, src, err := lookup()
	return src, err
}

func lookup() (key, source string, err error) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		return v, SourceEnv, nil
	}
	v, err := keyring.Get(AppName, keyringUser)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", SourceNone, nil
	case err != nil:
		return "", SourceNone, fmt.Errorf("failed to read api key from keyring: %w", err)
	case strings.TrimSpace(v) == "":
		return "", SourceNone, nil
	}
	return v, SourceKeyring, nil
}

// StoreCredential saves key in the OS keyring.
func StoreCredential(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key cannot be empty")
	}
	if err := keyring.Set(AppName, keyringUser, key); err != nil {
		return fmt.Errorf("failed to store api key in keyring: %w", err)
	}
	return nil
}

// DeleteCredential removes the key from the OS keyring. Deleting a key that
// was never stored is not an error.
func DeleteCredential() error {
	err := keyring.Delete(AppName, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete api key from keyring: %w", err)
	}
	return nil
}
