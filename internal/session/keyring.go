package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/wellness/internal/model"
)

const serviceName = "wellness"

// KeyringStore keeps the identity in the OS keyring.
type KeyringStore struct {
	key  string
	open func() (keyring.Keyring, error)
}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore returns a store for profile, falling back to an
// encrypted file under the config directory when no OS keyring exists.
func NewKeyringStore(profile string) *KeyringStore {
	return &KeyringStore{key: keyName(profile), open: openKeyring}
}

// NewKeyringStoreWith uses ring directly. Tests pass keyring.NewArrayKeyring.
func NewKeyringStoreWith(ring keyring.Keyring, profile string) *KeyringStore {
	return &KeyringStore{
		key:  keyName(profile),
		open: func() (keyring.Keyring, error) { return ring, nil },
	}
}

func keyName(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return "session:" + profile
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(model.ConfigDir(), "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("wellness-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Load returns the stored identity bytes.
func (s *KeyringStore) Load(_ context.Context) ([]byte, error) {
	ring, err := s.open()
	if err != nil {
		return nil, err
	}
	item, err := ring.Get(s.key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("getting session %q: %w", s.key, err)
	}
	return item.Data, nil
}

// Save replaces the stored identity.
func (s *KeyringStore) Save(_ context.Context, data []byte) error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	err = ring.Set(keyring.Item{
		Key:   s.key,
		Data:  data,
		Label: "wellness session",
	})
	if err != nil {
		return fmt.Errorf("setting session %q: %w", s.key, err)
	}
	return nil
}

// Clear removes the stored identity.
func (s *KeyringStore) Clear(_ context.Context) error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	if err := ring.Remove(s.key); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return ErrNoSession
		}
		return fmt.Errorf("deleting session %q: %w", s.key, err)
	}
	return nil
}
