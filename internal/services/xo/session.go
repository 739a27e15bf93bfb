// Package xo opens authenticated XO API sessions from the stored
// configuration and credentials.
package xo

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"nathanbeddoewebdev/xostats/internal/config"
	"nathanbeddoewebdev/xostats/internal/services/auth"
	"nathanbeddoewebdev/xostats/internal/xoapi"
)

var (
	ErrNoServer    = errors.New("no XO server configured")
	ErrNotLoggedIn = errors.New("not logged in")
)

// Options selects the server and transport settings for Open.
type Options struct {
	// Server overrides the configured server-url when non-empty.
	Server string

	// Insecure skips TLS certificate verification.
	Insecure bool

	Logger *slog.Logger
}

// ResolveServer returns the server to talk to: the explicit flag value if
// set, otherwise the configured server-url.
func ResolveServer(flag string, cfg *config.Config) (string, error) {
	if s := strings.TrimSpace(flag); s != "" {
		return s, nil
	}
	if cfg != nil && cfg.ServerURL != "" {
		return cfg.ServerURL, nil
	}
	return "", fmt.Errorf("%w: pass --server or run 'xostats config set server-url <url>'", ErrNoServer)
}

// Open dials the server, signs in with the stored token and returns the
// ready client.
func Open(ctx context.Context, cfg *config.Config, store auth.Store, opts Options) (*xoapi.Client, error) {
	server, err := ResolveServer(opts.Server, cfg)
	if err != nil {
		return nil, err
	}

	endpoint, err := xoapi.Endpoint(server)
	if err != nil {
		return nil, err
	}

	token, err := store.GetToken(server)
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return nil, fmt.Errorf("%w to %s: run 'xostats auth login %s'", ErrNotLoggedIn, server, server)
		}
		return nil, fmt.Errorf("reading token for %s: %w", server, err)
	}

	xoOpts := []xoapi.Option{xoapi.WithLogger(opts.Logger)}
	if opts.Insecure {
		xoOpts = append(xoOpts, xoapi.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}

	client, err := xoapi.Connect(ctx, endpoint, token, xoOpts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", server, err)
	}
	return client, nil
}
