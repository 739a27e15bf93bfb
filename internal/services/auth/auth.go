package auth

import (
	"errors"
	"strings"

	"nathanbeddoewebdev/xostats/internal/util"
	"nathanbeddoewebdev/xostats/internal/xoapi"
)

const ServiceName = "xostats"

var ErrTokenNotFound = errors.New("auth token not found")

// Store keeps one XO authentication token per server.
type Store interface {
	SetToken(server string, token string) error
	GetToken(server string) (string, error)
	DeleteToken(server string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// NormalizeServer maps the different spellings of an XO address
// ("xo.lan", "https://XO.lan/", "wss://xo.lan/api/") onto one lookup key.
func NormalizeServer(server string) string {
	endpoint, err := xoapi.Endpoint(server)
	if err != nil {
		return util.NormalizeKey(server)
	}
	return strings.ToLower(endpoint)
}
