package cli

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "northstar-onboard"

var errNoStoredToken = errors.New("no token in keyring")

// Tokens are kept in the OS keyring, one entry per API URL, so switching
// between a local and a hosted server keeps both logins.
func loadKeyringToken(apiURL string) (string, error) {
	token, err := keyring.Get(keyringService, apiURL)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", errNoStoredToken
	case err != nil:
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return token, nil
}

func storeKeyringToken(apiURL, token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(keyringService, apiURL, token); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

func deleteKeyringToken(apiURL string) error {
	err := keyring.Delete(keyringService, apiURL)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}
