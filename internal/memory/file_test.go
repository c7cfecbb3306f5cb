package memory

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestMemory(t *testing.T) *FileMemory {
	t.Helper()
	m, err := NewFileMemory(filepath.Join(t.TempDir(), "memory.json"))
	if err != nil {
		t.Fatalf("init memory: %v", err)
	}
	return m
}

func TestFileMemory_AppendAndReadConversation(t *testing.T) {
	m := newTestMemory(t)

	if err := m.AppendTurn("s1", RoleUser, "hello"); err != nil {
		t.Fatalf("append user: %v", err)
	}
	if err := m.AppendTurn("s1", RoleAgent, "hi there"); err != nil {
		t.Fatalf("append agent: %v", err)
	}
	if err := m.AppendTurn("s2", RoleUser, "other session"); err != nil {
		t.Fatalf("append s2: %v", err)
	}

	turns, err := m.Conversation("s1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("want 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[1].Role != RoleAgent {
		t.Fatalf("turn order mismatch: %+v", turns)
	}
	if turns[0].Text != "hello" {
		t.Fatalf("unexpected text: %q", turns[0].Text)
	}
}

func TestFileMemory_Preferences(t *testing.T) {
	m := newTestMemory(t)

	if err := m.SetPreference("s1", "currency", "USD"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.SetPreference("s1", "currency", "EUR"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, ok, err := m.Preference("s1", "currency")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v != "EUR" {
		t.Fatalf("last write should win, got %v (%v)", v, ok)
	}

	_, ok, _ = m.Preference("s1", "missing")
	if ok {
		t.Fatalf("missing key reported present")
	}
}

func TestFileMemory_CorruptFileDegradesToEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "memory.json")
	m, err := NewFileMemory(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := m.AppendTurn("s1", RoleUser, "hello"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := os.WriteFile(p, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	turns, err := m.Conversation("s1")
	if err != nil {
		t.Fatalf("read after corruption: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("want empty conversation, got %+v", turns)
	}
}
