package auth

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestNormalizeServer(t *testing.T) {
	want := "wss://xo.lan/api/"
	for _, in := range []string{"xo.lan", "https://XO.lan/", "wss://xo.lan/api/", " https://xo.lan "} {
		if got := NormalizeServer(in); got != want {
			t.Errorf("NormalizeServer(%q) = %q, want %q", in, got, want)
		}
	}

	if got := NormalizeServer(" FTP://Weird "); got != "ftp://weird" {
		t.Errorf("expected fallback normalisation, got %q", got)
	}
}

func TestMockStore_KeysByNormalizedServer(t *testing.T) {
	store := NewMockStore()
	if err := store.SetToken("https://xo.lan", "secret"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	token, err := store.GetToken("wss://XO.lan/api/")
	if err != nil || token != "secret" {
		t.Fatalf("GetToken = %q, %v", token, err)
	}

	if err := store.DeleteToken("xo.lan"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if _, err := store.GetToken("xo.lan"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound after delete, got %v", err)
	}
	if err := store.DeleteToken("xo.lan"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound deleting twice, got %v", err)
	}
}

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("")

	if _, err := store.GetToken("xo.lan"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound before login, got %v", err)
	}
	if err := store.SetToken("https://xo.lan", "secret"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	token, err := store.GetToken("xo.lan")
	if err != nil || token != "secret" {
		t.Fatalf("GetToken = %q, %v", token, err)
	}
	if err := store.DeleteToken("xo.lan"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if err := store.DeleteToken("xo.lan"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound deleting twice, got %v", err)
	}
}
