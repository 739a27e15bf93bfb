package auth

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"nathanbeddoewebdev/xostats/internal/config"
	"nathanbeddoewebdev/xostats/internal/services/auth"
)

// setupAuth isolates config and credentials for one test.
func setupAuth(t *testing.T) (*auth.MockStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)

	store := auth.NewMockStore()
	prevStore, prevInteractive := newStore, isInteractive
	newStore = func() auth.Store { return store }
	isInteractive = func() bool { return false }
	t.Cleanup(func() {
		newStore, isInteractive = prevStore, prevInteractive
	})

	return store, path
}

func execAuth(t *testing.T, stdin string, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestLogin_TokenFlag(t *testing.T) {
	store, _ := setupAuth(t)

	stdout, stderr := execAuth(t, "", "login", "https://xo.lan", "--token", "secret")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Saved token for https://xo.lan") {
		t.Errorf("expected confirmation, got: %s", stdout)
	}
	if token, err := store.GetToken("xo.lan"); err != nil || token != "secret" {
		t.Errorf("stored token = %q, %v", token, err)
	}
}

func TestLogin_SetsDefaultServer(t *testing.T) {
	setupAuth(t)

	stdout, _ := execAuth(t, "", "login", "https://xo.lan", "--token", "secret")

	if !strings.Contains(stdout, `server-url set to "https://xo.lan"`) {
		t.Errorf("expected server-url confirmation, got: %s", stdout)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ServerURL != "https://xo.lan" {
		t.Errorf("expected ServerURL to be saved, got %q", cfg.ServerURL)
	}
}

func TestLogin_KeepsExistingDefault(t *testing.T) {
	_, path := setupAuth(t)
	if err := (&config.Config{ServerURL: "https://main.lan"}).SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	stdout, _ := execAuth(t, "", "login", "https://other.lan", "--token", "secret")

	if strings.Contains(stdout, "server-url set") {
		t.Errorf("existing default must not change, got: %s", stdout)
	}
	cfg, _ := config.Load()
	if cfg.ServerURL != "https://main.lan" {
		t.Errorf("expected ServerURL unchanged, got %q", cfg.ServerURL)
	}
}

func TestLogin_TokenFromStdin(t *testing.T) {
	store, path := setupAuth(t)
	if err := (&config.Config{ServerURL: "https://xo.lan"}).SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	_, stderr := execAuth(t, "  piped-token \n", "login")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if token, _ := store.GetToken("https://xo.lan"); token != "piped-token" {
		t.Errorf("expected piped token, got %q", token)
	}
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{name: "no server", args: []string{"login", "--token", "x"}, wantErr: "server url is required"},
		{name: "bad scheme", args: []string{"login", "ftp://xo", "--token", "x"}, wantErr: "unsupported scheme"},
		{name: "empty token", stdin: "\n", args: []string{"login", "https://xo.lan"}, wantErr: "token cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := setupAuth(t)

			_, stderr := execAuth(t, tt.stdin, tt.args...)

			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("expected %q in stderr, got: %s", tt.wantErr, stderr)
			}
			if _, err := store.GetToken("https://xo.lan"); err == nil {
				t.Error("no token should be stored on error")
			}
		})
	}
}

func TestStatus(t *testing.T) {
	store, path := setupAuth(t)

	stdout, _ := execAuth(t, "", "status")
	if !strings.Contains(stdout, "No server configured") {
		t.Errorf("expected no-server message, got: %s", stdout)
	}

	if err := (&config.Config{ServerURL: "https://xo.lan"}).SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	stdout, _ = execAuth(t, "", "status")
	if !strings.Contains(stdout, "https://xo.lan: not logged in") {
		t.Errorf("expected not logged in, got: %s", stdout)
	}

	_ = store.SetToken("xo.lan", "secret")
	stdout, _ = execAuth(t, "", "status")
	if !strings.Contains(stdout, "https://xo.lan: logged in") {
		t.Errorf("expected logged in, got: %s", stdout)
	}
}
