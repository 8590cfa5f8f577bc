package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := DocumentUUID("card-42")
	second := DocumentUUID("  card-42 ")
	if first == uuid.Nil || first != second {
		t.Fatalf("expected stable uuid, got %s and %s", first, second)
	}
	if first == DocumentUUID("card-43") {
		t.Fatalf("expected distinct ids to differ")
	}
}

func TestUUIDNamespacesDoNotCollide(t *testing.T) {
	if DocumentUUID("proj-1") == UUID("proj-1") {
		t.Fatalf("expected document keys to be namespaced")
	}
}

func TestUUIDBlankKey(t *testing.T) {
	if UUID("   ") != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key")
	}
}
