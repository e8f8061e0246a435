package core

import (
	"testing"
	"time"

	"github.com/fitlive/classroom/internal/domain"
)

type stubConn struct{ closed bool }

func (c *stubConn) TrySend(Frame) error { return nil }
func (c *stubConn) Close()              { c.closed = true }

func trainer() domain.Identity {
	return domain.Identity{UserID: "t1", Name: "Alice", Role: domain.RoleTrainer, Active: true}
}

func participant(uid domain.UserID, name string) *Participant {
	return &Participant{UserID: uid, Name: name, BookingID: domain.BookingID("b-" + uid), Conn: &stubConn{}}
}

func TestAdmitEnforcesCapacity(t *testing.T) {
	r := NewRoom("c1", trainer(), "h1", &stubConn{}, 2)

	if _, _, err := r.Admit("p1", participant("u1", "Bob")); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	if _, _, err := r.Admit("p2", participant("u2", "Dora")); err != nil {
		t.Fatalf("second admit: %v", err)
	}
	_, _, err := r.Admit("p3", participant("u3", "Eve"))
	if CodeOf(err) != CodeResourceExhausted {
		t.Fatalf("expected resource_exhausted, got %v", err)
	}
	if got := r.ParticipantCount(); got != 2 {
		t.Fatalf("participant count = %d, want 2", got)
	}
}

func TestAdmitReplacesStaleConnection(t *testing.T) {
	r := NewRoom("c1", trainer(), "h1", &stubConn{}, 1)

	if _, _, err := r.Admit("p1", participant("u1", "Bob")); err != nil {
		t.Fatalf("admit: %v", err)
	}
	// Same user reconnects on a new connection; the room stays at
	// capacity but the stale entry goes first.
	stale, peers, err := r.Admit("p1b", participant("u1", "Bob"))
	if err != nil {
		t.Fatalf("reconnect admit: %v", err)
	}
	if stale != "p1" {
		t.Fatalf("stale = %q, want p1", stale)
	}
	if len(peers) != 1 || !peers[0].IsTrainer {
		t.Fatalf("roster should hold only the trainer, got %+v", peers)
	}
	if _, ok := r.Member("p1"); ok {
		t.Fatal("stale connection still a member")
	}
	if _, ok := r.Member("p1b"); !ok {
		t.Fatal("new connection not a member")
	}
}

func TestRemoveParticipantIdempotent(t *testing.T) {
	r := NewRoom("c1", trainer(), "h1", &stubConn{}, 2)
	r.Admit("p1", participant("u1", "Bob"))

	if _, ok := r.RemoveParticipant("p1"); !ok {
		t.Fatal("first remove should report true")
	}
	if _, ok := r.RemoveParticipant("p1"); ok {
		t.Fatal("second remove should be a no-op")
	}
}

func TestSwapHostCancelsGrace(t *testing.T) {
	r := NewRoom("c1", trainer(), "h1", &stubConn{}, 2)
	r.Admit("p1", participant("u1", "Bob"))

	fired := make(chan struct{})
	if !r.HostLost("h1", time.Hour, func() { close(fired) }) {
		t.Fatal("HostLost refused")
	}
	old, peers, ok := r.SwapHost("h2", &stubConn{})
	if !ok || old != "h1" {
		t.Fatalf("swap = (%q, %v), want (h1, true)", old, ok)
	}
	if len(peers) != 1 {
		t.Fatalf("roster = %+v, want the one participant", peers)
	}
	if _, ok := r.CloseIfHostStillLost("h1"); ok {
		t.Fatal("teardown must not proceed after reconnect")
	}
	if !r.IsHostConn("h2") {
		t.Fatal("h2 should be the attached host connection")
	}
}

func TestHostLostStaleConnection(t *testing.T) {
	r := NewRoom("c1", trainer(), "h1", &stubConn{}, 2)
	r.SwapHost("h2", &stubConn{})

	if r.HostLost("h1", time.Hour, func() {}) {
		t.Fatal("a stale host connection must not arm the grace timer")
	}
}

func TestCloseByHostOnlyCurrentConnection(t *testing.T) {
	r := NewRoom("c1", trainer(), "h1", &stubConn{}, 2)
	r.Admit("p1", participant("u1", "Bob"))

	if _, err := r.CloseByHost("p1"); CodeOf(err) != CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	conns, err := r.CloseByHost("h1")
	if err != nil {
		t.Fatalf("host close: %v", err)
	}
	if len(conns) != 2 {
		t.Fatalf("close snapshot = %d conns, want 2", len(conns))
	}
	if _, err := r.CloseByHost("h1"); CodeOf(err) != CodeNotFound {
		t.Fatalf("closing twice should report not_found, got %v", err)
	}
}
