package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvAuthToken = "TWEETSCRAPER_AUTH_TOKEN"
	EnvCT0       = "TWEETSCRAPER_CT0"
	EnvUserAgent = "TWEETSCRAPER_USER_AGENT"
)

// EnvironmentStore reads a single read-only account from the environment
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment session under the given username,
// or "default" when username is empty
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	authToken := os.Getenv(EnvAuthToken)
	ct0 := os.Getenv(EnvCT0)
	if authToken == "" || ct0 == "" {
		return nil, ErrCredentialsNotFound
	}

	if username == "" {
		username = "default"
	}
	return &Account{
		Username:     username,
		AuthToken:    authToken,
		CT0:          ct0,
		UserAgent:    os.Getenv(EnvUserAgent),
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(username string) bool {
	return os.Getenv(EnvAuthToken) != "" && os.Getenv(EnvCT0) != ""
}
