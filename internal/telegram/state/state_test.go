package state

import "testing"

func TestManagerDefaultsToIdle(t *testing.T) {
	m := NewManager()
	if got := m.Get(1); got != Idle {
		t.Fatalf("Get(1) = %q, want idle", got)
	}
	if m.Active(1) {
		t.Fatal("new user must not be active")
	}
}

func TestManagerSetGetClear(t *testing.T) {
	m := NewManager()
	m.Set(1, State("main_menu"))
	if got := m.Get(1); got != State("main_menu") {
		t.Fatalf("Get(1) = %q", got)
	}
	if !m.Active(1) {
		t.Fatal("user must be active after Set")
	}

	// sessions are per user
	if got := m.Get(2); got != Idle {
		t.Fatalf("Get(2) = %q, want idle", got)
	}

	m.Clear(1)
	if m.Active(1) {
		t.Fatal("user must be inactive after Clear")
	}
}

func TestManagerSetIdleRemovesSession(t *testing.T) {
	m := NewManager()
	m.Set(5, State("chat_menu"))
	m.Set(5, Idle)
	if m.Active(5) {
		t.Fatal("setting idle must drop the session")
	}
}
