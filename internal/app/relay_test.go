package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fitlive/classroom/internal/core"
)

// liveRoom spins up a started class with bob joined, returning the
// relay plus both connections.
func liveRoom(t *testing.T) (*Relay, *Lifecycle, *fakeConn, *fakeConn) {
	t.Helper()
	lc := newLifecycle(newFakeClasses(scheduledClass(4)), newFakeBookings(bob.UserID), time.Hour)
	hostConn := &fakeConn{}
	if _, err := lc.Start(context.Background(), "hA", hostConn, alice, "c1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	bobConn := &fakeConn{}
	if _, err := lc.Join(context.Background(), "pB", bobConn, bob, "c1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	return &Relay{Registry: lc.Registry}, lc, hostConn, bobConn
}

func TestSignalRelayedVerbatim(t *testing.T) {
	rl, _, _, bobConn := liveRoom(t)

	payload := json.RawMessage(`{"sdp":"v=0 fake offer"}`)
	rl.Signal("c1", "hA", "Alice", "pB", "offer", payload)

	bobConn.mu.Lock()
	defer bobConn.mu.Unlock()
	var last []byte
	for _, f := range bobConn.frames {
		last = f
	}
	var ev core.SignalEvent
	if err := json.Unmarshal(last, &ev); err != nil {
		t.Fatalf("decode relayed frame: %v", err)
	}
	if ev.Type != core.EventWebRTCOffer || ev.From != "hA" || !ev.IsTrainer {
		t.Fatalf("relayed event = %+v", ev)
	}
	if string(ev.Payload) != string(payload) {
		t.Fatalf("payload mangled: %s", ev.Payload)
	}
}

func TestSignalKinds(t *testing.T) {
	rl, _, hostConn, _ := liveRoom(t)

	rl.Signal("c1", "pB", "Bob", "hA", "answer", json.RawMessage(`{}`))
	rl.Signal("c1", "pB", "Bob", "hA", "candidate", json.RawMessage(`{}`))

	if hostConn.countEvent(core.EventWebRTCAnswer) != 1 {
		t.Fatal("answer not relayed")
	}
	if hostConn.countEvent(core.EventICECandidate) != 1 {
		t.Fatal("candidate not relayed")
	}
	if hostConn.countEvent(core.EventWebRTCOffer) != 0 {
		t.Fatal("stray offer")
	}
}

func TestSignalDroppedSilently(t *testing.T) {
	rl, lc, hostConn, bobConn := liveRoom(t)

	before := len(hostConn.eventTypes()) + len(bobConn.eventTypes())

	// Stale target, foreign sender, unknown kind, unknown class: all
	// fire-and-forget no-ops.
	rl.Signal("c1", "hA", "Alice", "gone", "offer", json.RawMessage(`{}`))
	rl.Signal("c1", "intruder", "Mallory", "pB", "offer", json.RawMessage(`{}`))
	rl.Signal("c1", "hA", "Alice", "pB", "renegotiate", json.RawMessage(`{}`))
	rl.Signal("c9", "hA", "Alice", "pB", "offer", json.RawMessage(`{}`))

	// A target that left the room is no longer reachable.
	lc.Leave(context.Background(), "pB", "c1")
	rl.Signal("c1", "hA", "Alice", "pB", "offer", json.RawMessage(`{}`))

	after := len(hostConn.eventTypes()) + len(bobConn.eventTypes())
	if after-before != 1 { // just bob's peer-left to the trainer
		t.Fatalf("unexpected deliveries: %v / %v", hostConn.eventTypes(), bobConn.eventTypes())
	}
	if bobConn.countEvent(core.EventWebRTCOffer) != 0 {
		t.Fatal("offer reached a connection outside the room")
	}
}

func TestChatBroadcastToWholeRoom(t *testing.T) {
	rl, _, hostConn, bobConn := liveRoom(t)

	rl.Chat("c1", "pB", "Bob", "hello everyone")

	for _, conn := range []*fakeConn{hostConn, bobConn} {
		if conn.countEvent(core.EventClassMessage) != 1 {
			t.Fatalf("class-message missing on %v", conn.eventTypes())
		}
	}

	bobConn.mu.Lock()
	last := bobConn.frames[len(bobConn.frames)-1]
	bobConn.mu.Unlock()
	var ev core.ClassMessageEvent
	if err := json.Unmarshal(last, &ev); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if ev.From != "pB" || ev.Name != "Bob" || ev.IsTrainer || ev.Message != "hello everyone" {
		t.Fatalf("chat event = %+v", ev)
	}
	if ev.SentAt.IsZero() {
		t.Fatal("chat missing timestamp")
	}
}

func TestChatFromNonMemberIgnored(t *testing.T) {
	rl, _, hostConn, bobConn := liveRoom(t)

	rl.Chat("c1", "intruder", "Mallory", "let me in")

	if hostConn.countEvent(core.EventClassMessage) != 0 || bobConn.countEvent(core.EventClassMessage) != 0 {
		t.Fatal("chat from a non-member must be silently dropped")
	}
}
