package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000

	// EnvPassphrase overrides the generated passphrase file
	EnvPassphrase = "TWEETSCRAPER_PASSPHRASE"
)

// EncryptedFileStore keeps all accounts in one AES-GCM sealed file
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// sealedFile is the on-disk layout
type sealedFile struct {
	Version   int       `json:"version"`
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Modified  time.Time `json:"modified"`
}

// NewEncryptedFileStore creates a store sealed with passphrase
func NewEncryptedFileStore(path, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

func (e *EncryptedFileStore) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, salt, err := e.open()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load existing data: %w", err)
	}
	accounts[account.Username] = *account
	return e.seal(accounts, salt)
}

func (e *EncryptedFileStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	accounts, _, err := e.open()
	if os.IsNotExist(err) {
		return nil, ErrCredentialsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	account, ok := accounts[username]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &account, nil
}

func (e *EncryptedFileStore) List() ([]*Account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	accounts, _, err := e.open()
	if os.IsNotExist(err) {
		return []*Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	list := make([]*Account, 0, len(accounts))
	for _, account := range accounts {
		account := account
		list = append(list, &account)
	}
	return list, nil
}

// Delete removes an account; the file goes away with the last one
func (e *EncryptedFileStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, salt, err := e.open()
	if os.IsNotExist(err) {
		return ErrCredentialsNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	if _, ok := accounts[username]; !ok {
		return ErrCredentialsNotFound
	}

	delete(accounts, username)
	if len(accounts) == 0 {
		return os.Remove(e.path)
	}
	return e.seal(accounts, salt)
}

func (e *EncryptedFileStore) Exists(username string) bool {
	account, err := e.Retrieve(username)
	return err == nil && account != nil
}

// open decrypts the file. It always returns a usable map, even on error.
func (e *EncryptedFileStore) open() (map[string]Account, []byte, error) {
	accounts := make(map[string]Account)

	content, err := os.ReadFile(e.path)
	if err != nil {
		return accounts, nil, err
	}

	var file sealedFile
	if err := json.Unmarshal(content, &file); err != nil {
		return accounts, nil, fmt.Errorf("failed to parse file: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return accounts, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(file.Encrypted)
	if err != nil {
		return accounts, nil, fmt.Errorf("failed to decode encrypted data: %w", err)
	}

	plain, err := decrypt(sealed, e.key(salt))
	if err != nil {
		return accounts, nil, fmt.Errorf("failed to decrypt data: %w", err)
	}
	if err := json.Unmarshal(plain, &accounts); err != nil {
		return accounts, nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, salt, nil
}

// seal encrypts accounts and atomically replaces the file. A nil salt is
// generated.
func (e *EncryptedFileStore) seal(accounts map[string]Account, salt []byte) error {
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	plain, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	sealed, err := encrypt(plain, e.key(salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt data: %w", err)
	}

	content, err := json.MarshalIndent(sealedFile{
		Version:   1,
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(sealed),
		Modified:  time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file data: %w", err)
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Rename(tmp, e.path)
}

func (e *EncryptedFileStore) key(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

// loadPassphrase reads TWEETSCRAPER_PASSPHRASE, or a passphrase file in
// configDir which is generated on first use
func loadPassphrase(configDir string) (string, error) {
	if pass := os.Getenv(EnvPassphrase); pass != "" {
		return pass, nil
	}

	path := filepath.Join(configDir, ".passphrase")
	if content, err := os.ReadFile(path); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := base64.URLEncoding.EncodeToString(b)

	if err := os.WriteFile(path, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
