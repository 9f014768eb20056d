package ws

import (
	"sync"
	"testing"
)

func TestPresence_RegisterSnapshot(t *testing.T) {
	p := NewPresence()
	p.Register(1, "c1")
	p.Register(2, "c2")

	ids := p.Snapshot()
	if len(ids) != 2 {
		t.Fatalf("Snapshot() len = %d, want 2", len(ids))
	}
	if p.Online() != 2 {
		t.Errorf("Online() = %d, want 2", p.Online())
	}
}

func TestPresence_LastConnectionWins(t *testing.T) {
	p := NewPresence()
	p.Register(1, "c1")
	p.Register(1, "c2")

	ids := p.Snapshot()
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("Snapshot() = %v, want [1]", ids)
	}
	connID, ok := p.ConnFor(1)
	if !ok || connID != "c2" {
		t.Errorf("ConnFor(1) = %q, want c2", connID)
	}

	// Deregistering the superseded connection must not touch the user.
	if _, ok := p.Deregister("c1"); ok {
		t.Error("Deregister(c1) should be a no-op after re-register")
	}
	if _, ok := p.ConnFor(1); !ok {
		t.Error("user 1 should still be online after stale deregister")
	}
}

func TestPresence_DeregisterUnknown(t *testing.T) {
	p := NewPresence()
	if _, ok := p.Deregister("nope"); ok {
		t.Error("Deregister() on unknown conn should report false")
	}
}

func TestPresence_BidirectionalConsistency(t *testing.T) {
	p := NewPresence()
	p.Register(1, "c1")
	p.Register(2, "c2")
	p.Register(1, "c3")
	p.Deregister("c2")
	p.Deregister("c2")

	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.byUser) != len(p.byConn) {
		t.Fatalf("map sizes diverged: byUser=%d byConn=%d", len(p.byUser), len(p.byConn))
	}
	for userID, connID := range p.byUser {
		if p.byConn[connID] != userID {
			t.Errorf("byConn[%q] = %d, want %d", connID, p.byConn[connID], userID)
		}
	}
}

func TestPresence_Concurrent(t *testing.T) {
	p := NewPresence()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			connID := "conn-" + string(rune('a'+n%26)) + string(rune('0'+n/26))
			p.Register(uint(n%10), connID)
			p.Snapshot()
			p.Deregister(connID)
		}(i)
	}
	wg.Wait()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.byUser) != len(p.byConn) {
		t.Fatalf("map sizes diverged after concurrent ops: byUser=%d byConn=%d", len(p.byUser), len(p.byConn))
	}
	for userID, connID := range p.byUser {
		if p.byConn[connID] != userID {
			t.Errorf("byConn[%q] = %d, want %d", connID, p.byConn[connID], userID)
		}
	}
}
