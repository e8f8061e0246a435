package signal

import (
	"testing"
	"time"
)

func TestChatRateLimiter(t *testing.T) {
	rl := NewChatRateLimiter(2, time.Hour)

	if !rl.Allow("u1") || !rl.Allow("u1") {
		t.Fatal("first two messages should pass")
	}
	if rl.Allow("u1") {
		t.Fatal("third message inside the window should be blocked")
	}
	if !rl.Allow("u2") {
		t.Fatal("limits are per user")
	}
}

func TestChatRateLimiterWindowSlides(t *testing.T) {
	rl := NewChatRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("u1") {
		t.Fatal("first message should pass")
	}
	if rl.Allow("u1") {
		t.Fatal("second immediate message should be blocked")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("u1") {
		t.Fatal("message after the window should pass")
	}
}
