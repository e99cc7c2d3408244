package cache

import "testing"

func TestOpenGetPutRoundTrip(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get("modhash", 3); err != nil || ok {
		t.Fatalf("expected no cached entry before Put, got ok=%v err=%v", ok, err)
	}

	session := NewSession()
	payload := []byte("decompiled-bytes")
	if err := store.Put("modhash", 3, session, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get("modhash", 3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cached entry after Put")
	}
	if string(got) != string(payload) {
		t.Fatalf("Get returned %q, want %q", got, payload)
	}
}

func TestPutUpsertsOnConflict(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	session := NewSession()
	if err := store.Put("modhash", 1, session, []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("modhash", 1, session, []byte("second")); err != nil {
		t.Fatalf("Put (update): %v", err)
	}
	got, ok, err := store.Get("modhash", 1)
	if err != nil || !ok {
		t.Fatalf("Get after upsert: ok=%v err=%v", ok, err)
	}
	if string(got) != "second" {
		t.Fatalf("Get after upsert = %q, want %q", got, "second")
	}
}

func TestGetIsolatedByModuleHashAndIndex(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	session := NewSession()
	store.Put("modA", 0, session, []byte("a"))
	store.Put("modB", 0, session, []byte("b"))
	store.Put("modA", 1, session, []byte("c"))

	got, ok, _ := store.Get("modA", 0)
	if !ok || string(got) != "a" {
		t.Fatalf("Get(modA,0) = %q, ok=%v", got, ok)
	}
	got, ok, _ = store.Get("modB", 0)
	if !ok || string(got) != "b" {
		t.Fatalf("Get(modB,0) = %q, ok=%v", got, ok)
	}
	got, ok, _ = store.Get("modA", 1)
	if !ok || string(got) != "c" {
		t.Fatalf("Get(modA,1) = %q, ok=%v", got, ok)
	}
}

func TestNewSessionIsUnique(t *testing.T) {
	a, b := NewSession(), NewSession()
	if a == b {
		t.Fatalf("expected two distinct session identifiers")
	}
}
