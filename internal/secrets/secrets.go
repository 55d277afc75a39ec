// Package secrets reads notifier credentials from the OS keychain so they
// need not sit in the config file.
package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "jobalert"

// Default keychain accounts.
const (
	SendGridAccount = "jobalert:sendgrid"
	TelegramAccount = "jobalert:telegram"
)

var ErrNotFound = errors.New("secret not found")

func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	v, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// Resolve prefers an explicit value (config or env) and falls back to the
// keychain entry for account, then to defaultAccount.
func Resolve(value, account, defaultAccount string) (string, error) {
	if v := strings.TrimSpace(value); v != "" {
		return v, nil
	}
	if account == "" {
		account = defaultAccount
	}
	return Get(account)
}
