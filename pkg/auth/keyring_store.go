package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "tweetscraper"
	keyringPrefix  = "twitter_"
)

// KeyringStore keeps credentials in the system keychain
type KeyringStore struct{}

// NewKeyringStore returns an error when no keychain is reachable
func NewKeyringStore() (*KeyringStore, error) {
	const check = "availability_check"
	if err := keyring.Set(keyringService, check, "ok"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, check)
	return &KeyringStore{}, nil
}

func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+account.Username, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+username)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrCredentialsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

// List is always empty: go-keyring cannot enumerate entries
func (k *KeyringStore) List() ([]*Account, error) {
	return []*Account{}, nil
}

func (k *KeyringStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	err := keyring.Delete(keyringService, keyringPrefix+username)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrCredentialsNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Exists(username string) bool {
	if username == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+username)
	return err == nil
}
