package stats

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"nathanbeddoewebdev/xostats/internal/stats/domain"

	"github.com/google/go-cmp/cmp"
)

func TestObjectsCommand_TableOutput(t *testing.T) {
	mock := newMockBackend()
	useBackend(t, mock)

	stdout, _, err := execStats(t, "objects")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"ID", "NAME", "TYPE", "h1", "xcp-1", "host", "v1", "db", "v2", "web", "VM"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output, got:\n%s", want, stdout)
		}
	}
	if strings.Index(stdout, "xcp-1") > strings.Index(stdout, "db") {
		t.Error("expected hosts to be listed before VMs")
	}
	if !mock.closed {
		t.Error("expected backend to be closed")
	}
}

func TestObjectsCommand_TypeFilterJSON(t *testing.T) {
	useBackend(t, newMockBackend())

	stdout, _, err := execStats(t, "objects", "--type", "VM", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []domain.Object
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	want := []domain.Object{vmObject("v1", "db"), vmObject("v2", "web")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}
}

func TestObjectsCommand_Empty(t *testing.T) {
	useBackend(t, &mockBackend{})

	stdout, _, err := execStats(t, "objects", "--type", "host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No running objects found.") {
		t.Errorf("expected empty message, got %q", stdout)
	}

	stdout, _, err = execStats(t, "objects", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("expected empty JSON array, got %q", stdout)
	}
}

func TestObjectsCommand_InvalidType(t *testing.T) {
	opened := useBackend(t, newMockBackend())

	_, _, err := execStats(t, "objects", "--type", "pool")
	if err == nil || !strings.Contains(err.Error(), `unknown object type "pool"`) {
		t.Errorf("expected unknown type error, got %v", err)
	}
	if *opened != 0 {
		t.Error("expected no connection for an invalid type")
	}
}

func TestObjectsCommand_ListError(t *testing.T) {
	mock := newMockBackend()
	mock.listErr = domain.ErrUnauthorized
	useBackend(t, mock)

	_, _, err := execStats(t, "objects", "--type", "host")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
