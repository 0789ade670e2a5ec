package ws

import (
	"errors"
	"testing"

	"github.com/devmeet/devmeet/internal/domain"
)

func TestRegistryBindAndLookup(t *testing.T) {
	r := NewRegistry()

	if err := r.Bind("conn-1", "room-1", "alice"); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	m, ok := r.Lookup("conn-1")
	if !ok {
		t.Fatal("expected binding for conn-1")
	}
	if m.RoomID != "room-1" || m.DisplayName != "alice" {
		t.Errorf("unexpected binding: %+v", m)
	}
}

func TestRegistryRejectsDoubleBind(t *testing.T) {
	r := NewRegistry()

	if err := r.Bind("conn-1", "room-1", "alice"); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	err := r.Bind("conn-1", "room-2", "alice")
	if !errors.Is(err, domain.ErrAlreadyInRoom) {
		t.Errorf("expected ErrAlreadyInRoom, got %v", err)
	}
}

func TestRegistryUnbind(t *testing.T) {
	r := NewRegistry()

	if err := r.Bind("conn-1", "room-1", "alice"); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	m, ok := r.Unbind("conn-1")
	if !ok {
		t.Fatal("expected unbind to return the binding")
	}
	if m.DisplayName != "alice" {
		t.Errorf("unexpected binding: %+v", m)
	}

	if _, ok := r.Lookup("conn-1"); ok {
		t.Error("binding should be gone after unbind")
	}
}

func TestRegistryUnbindUnknownIsNoop(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Unbind("ghost"); ok {
		t.Error("unbinding an unknown id should report no binding")
	}
}
