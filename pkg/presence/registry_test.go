package presence_test

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/Shagunjha0111/community-section/pkg/presence"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

type fakeChannel struct {
	mu   sync.Mutex
	sent [][]byte
}

func (f *fakeChannel) Send(msg []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

func (f *fakeChannel) Close(err error) {}

func TestOpenGetClose(t *testing.T) {
	r := presence.NewRegistry(newTestLogger())
	ch := &fakeChannel{}

	if replaced := r.Open("u1", ch); replaced {
		t.Error("first open reported a replaced entry")
	}
	got, ok := r.Get("u1")
	if !ok {
		t.Fatal("expected live channel after open")
	}
	if got != ch {
		t.Error("Get returned a different channel than opened")
	}
	if r.Count("u1") != 1 {
		t.Errorf("expected count 1, got %d", r.Count("u1"))
	}

	if !r.Close("u1", ch) {
		t.Error("close with matching channel failed")
	}
	if _, ok := r.Get("u1"); ok {
		t.Error("found channel after close")
	}
}

func TestNewSessionReplacesOld(t *testing.T) {
	r := presence.NewRegistry(newTestLogger())
	old := &fakeChannel{}
	renewed := &fakeChannel{}

	r.Open("u1", old)
	if replaced := r.Open("u1", renewed); !replaced {
		t.Error("second open did not report replacement")
	}

	got, _ := r.Get("u1")
	if got != renewed {
		t.Error("expected the newer channel to win")
	}
}

func TestStaleCloseDoesNotEvictNewSession(t *testing.T) {
	r := presence.NewRegistry(newTestLogger())
	old := &fakeChannel{}
	renewed := &fakeChannel{}

	r.Open("u1", old)
	r.Open("u1", renewed)

	// The old session's deferred close fires after the replacement.
	if r.Close("u1", old) {
		t.Error("stale close removed the entry")
	}
	if _, ok := r.Get("u1"); !ok {
		t.Error("new session was evicted by a stale close")
	}
}

func TestCloseUnknownUser(t *testing.T) {
	r := presence.NewRegistry(newTestLogger())
	if r.Close("ghost", &fakeChannel{}) {
		t.Error("close succeeded for a user with no session")
	}
}

func TestLenAndChannels(t *testing.T) {
	r := presence.NewRegistry(newTestLogger())
	r.Open("u1", &fakeChannel{})
	r.Open("u2", &fakeChannel{})

	if r.Len() != 2 {
		t.Errorf("expected 2 online users, got %d", r.Len())
	}
	if len(r.Channels()) != 2 {
		t.Errorf("expected 2 channels, got %d", len(r.Channels()))
	}
}
