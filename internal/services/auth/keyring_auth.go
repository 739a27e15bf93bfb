package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringStore stores tokens in the OS keychain.
type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) SetToken(server string, token string) error {
	key := NormalizeServer(server)
	return keyring.Set(k.serviceName, key, token)
}

func (k *KeyringStore) GetToken(server string) (string, error) {
	key := NormalizeServer(server)
	token, err := keyring.Get(k.serviceName, key)
	if err == nil {
		return token, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	return "", err
}

func (k *KeyringStore) DeleteToken(server string) error {
	key := NormalizeServer(server)
	err := keyring.Delete(k.serviceName, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}
