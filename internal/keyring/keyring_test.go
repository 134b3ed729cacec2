package keyring

import (
	"errors"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetGetDelete(t *testing.T) {
	gokeyring.MockInit()
	entry := ConnectionEntry()
	connStr := "postgres://practice@localhost:5432/dailyfix?sslmode=disable"

	if err := entry.Set(connStr); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := entry.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != connStr {
		t.Errorf("Get() = %q, want %q", got, connStr)
	}

	if err := entry.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := entry.Get(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := entry.Delete(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	gokeyring.MockInit()
	if err := ConnectionEntry().Set("   "); err == nil {
		t.Error("Set should reject an empty connection string")
	}
}

func TestUnavailableKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no dbus"))
	t.Cleanup(gokeyring.MockInit)

	if _, err := ConnectionEntry().Get(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("Get error = %v, want ErrKeyringUnavailable", err)
	}
	if IsAvailable() {
		t.Error("IsAvailable should be false when the backend errors")
	}
}

func TestIsAvailableWithMock(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("mock keyring should be available")
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in       string
		hidden   string
		contains string
	}{
		{"postgres://alice@db.example.com:5432/dailyfix", "alice", "db.example.com"},
		{"host=localhost user=alice password=hunter2 dbname=dailyfix", "hunter2", "password=***"},
	}
	for _, tt := range tests {
		got := Mask(tt.in)
		if strings.Contains(got, tt.hidden) {
			t.Errorf("Mask(%q) = %q still shows %q", tt.in, got, tt.hidden)
		}
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Mask(%q) = %q, want it to contain %q", tt.in, got, tt.contains)
		}
	}
}
