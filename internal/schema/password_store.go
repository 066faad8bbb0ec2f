package schema

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/99designs/keyring"
)

const serviceName = "lazyfilter"

// ErrPasswordNotFound is returned when the keyring holds no password for a server
var ErrPasswordNotFound = errors.New("password not found in keyring")

// PasswordError wraps a keyring failure
type PasswordError struct {
	Op  string
	Err error
}

func (e *PasswordError) Error() string {
	return fmt.Sprintf("keyring %s: %v", e.Op, e.Err)
}

func (e *PasswordError) Unwrap() error {
	return e.Err
}

// PasswordStore keeps Postgres passwords in the OS keyring with a file fallback
type PasswordStore struct {
	ring          keyring.Keyring
	usingFallback bool
}

// NewPasswordStore opens the keyring with platform-appropriate backends
func NewPasswordStore(configDir string) (*PasswordStore, error) {
	backends := backendsForPlatform()

	ring, err := keyring.Open(keyring.Config{
		ServiceName:     serviceName,
		AllowedBackends: backends,
		FileDir:         filepath.Join(configDir, "keyring"),
		FilePasswordFunc: func(_ string) (string, error) {
			return deriveFilePassword()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	return &PasswordStore{
		ring:          ring,
		usingFallback: usesFileBackend(backends),
	}, nil
}

func newPasswordStoreWithRing(ring keyring.Keyring) *PasswordStore {
	return &PasswordStore{ring: ring}
}

func backendsForPlatform() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.FileBackend}
	case "linux":
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.FileBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}
	default:
		return []keyring.BackendType{keyring.FileBackend}
	}
}

// usesFileBackend reports whether no native backend is available
func usesFileBackend(requested []keyring.BackendType) bool {
	if len(requested) == 1 && requested[0] == keyring.FileBackend {
		return true
	}
	for _, b := range keyring.AvailableBackends() {
		if b != keyring.FileBackend {
			return false
		}
	}
	return true
}

// IsUsingFallback reports whether passwords go to the encrypted file backend
func (ps *PasswordStore) IsUsingFallback() bool {
	return ps.usingFallback
}

// Save stores the password for a server. Empty passwords are not stored.
func (ps *PasswordStore) Save(host string, port int, database, user, password string) error {
	if password == "" {
		return nil
	}
	err := ps.ring.Set(keyring.Item{
		Key:         makeKey(host, port, database, user),
		Data:        []byte(password),
		Label:       fmt.Sprintf("lazyfilter: %s@%s:%d/%s", user, host, port, database),
		Description: "PostgreSQL password used to read filter columns",
	})
	if err != nil {
		return &PasswordError{Op: "save", Err: err}
	}
	return nil
}

// Get returns the password for a server
func (ps *PasswordStore) Get(host string, port int, database, user string) (string, error) {
	item, err := ps.ring.Get(makeKey(host, port, database, user))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", &PasswordError{Op: "read", Err: err}
	}
	return string(item.Data), nil
}

// makeKey format: "host:port:database:user"
func makeKey(host string, port int, database, user string) string {
	return fmt.Sprintf("%s:%d:%s:%s", host, port, database, user)
}
