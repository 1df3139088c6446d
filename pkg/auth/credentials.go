package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

// Account holds the session cookies of a logged-in Twitter account
type Account struct {
	Username     string    `json:"username"`
	AuthToken    string    `json:"auth_token"`
	CT0          string    `json:"ct0"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Validate checks that the account carries a usable session
func (a *Account) Validate() error {
	switch {
	case a == nil || a.Username == "":
		return errors.New("username is required")
	case a.AuthToken == "":
		return errors.New("auth_token cookie is required")
	case a.CT0 == "":
		return errors.New("ct0 cookie is required")
	}
	return nil
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	Store(account *Account) error
	Retrieve(username string) (*Account, error)
	List() ([]*Account, error)
	Delete(username string) error
	Exists(username string) bool
}

// Manager tries each store in order
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager backed by the system keychain when
// available, an encrypted file, and finally the environment
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	passphrase, err := loadPassphrase(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"), passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return NewManagerWithStores(stores...), nil
}

// NewManagerWithStores creates a manager over the given stores
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials in the first store that accepts them
func (m *Manager) Store(account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(username string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, username)
}

// RetrieveDefault returns environment credentials if set, otherwise the
// most recently modified stored account
func (m *Manager) RetrieveDefault() (*Account, error) {
	for _, store := range m.stores {
		if env, ok := store.(*EnvironmentStore); ok {
			if account, err := env.Retrieve(""); err == nil {
				return account, nil
			}
		}
	}

	accounts, err := m.List()
	if err == nil && len(accounts) > 0 {
		return accounts[0], nil
	}
	return nil, ErrCredentialsNotFound
}

// List returns every known account, newest first. When several stores hold
// the same username the most recent copy wins.
func (m *Manager) List() ([]*Account, error) {
	byName := make(map[string]*Account)
	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := byName[account.Username]; !ok || account.LastModified.After(existing.LastModified) {
				byName[account.Username] = account
			}
		}
	}

	result := make([]*Account, 0, len(byName))
	for _, account := range byName {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastModified.After(result[j].LastModified)
	})
	return result, nil
}

// Delete removes credentials from every store
func (m *Manager) Delete(username string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(username); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrCredentialsNotFound, username)
}

func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "tweetscraper")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "tweetscraper")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "tweetscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "tweetscraper")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// SanitizeAccount returns a copy with the cookies masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}
	masked := *account
	masked.AuthToken = maskString(account.AuthToken)
	masked.CT0 = maskString(account.CT0)
	return &masked
}

// maskString keeps the first and last 4 characters
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
