package session

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestSessionAddFiles(t *testing.T) {
	st := NewStore(time.Hour, testLogger())
	s := st.Create()

	t.Run("accumulates counts", func(t *testing.T) {
		if got := s.AddFiles(2); got != 2 {
			t.Errorf("expected 2 after first add, got %d", got)
		}
		if got := s.AddFiles(1); got != 3 {
			t.Errorf("expected 3 after second add, got %d", got)
		}
		if got := s.FileCount(); got != 3 {
			t.Errorf("FileCount() = %d, want 3", got)
		}
	})

	t.Run("no bound enforced by the session itself", func(t *testing.T) {
		if got := s.AddFiles(100); got != 103 {
			t.Errorf("expected 103, got %d", got)
		}
	})
}

func TestSessionHistory(t *testing.T) {
	st := NewStore(time.Hour, testLogger())
	s := st.Create()

	s.AddMessage(RoleUser, "hello")
	s.AddMessage(RoleAssistant, "hi there")

	h := s.History()
	if len(h) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(h))
	}
	if h[0].Role != RoleUser || h[0].Text != "hello" {
		t.Errorf("unexpected first entry: %+v", h[0])
	}
	if h[1].Role != RoleAssistant {
		t.Errorf("unexpected second entry role: %s", h[1].Role)
	}
}

func TestSessionHistoryLimit(t *testing.T) {
	st := NewStore(time.Hour, testLogger())
	s := st.Create()

	for i := 0; i < DefaultMaxHistory+10; i++ {
		s.AddMessage(RoleUser, "msg")
	}
	if got := len(s.History()); got != DefaultMaxHistory {
		t.Errorf("expected history capped at %d, got %d", DefaultMaxHistory, got)
	}
}

func TestStoreGet(t *testing.T) {
	st := NewStore(time.Hour, testLogger())

	t.Run("unknown id returns nil", func(t *testing.T) {
		if st.Get("nope") != nil {
			t.Error("expected nil for unknown session")
		}
	})

	t.Run("returns live session", func(t *testing.T) {
		s := st.Create()
		if got := st.Get(s.ID); got != s {
			t.Error("expected the same session back")
		}
	})
}

func TestStoreExpiry(t *testing.T) {
	expiry := time.Hour
	st := NewStore(expiry, testLogger())
	s := st.Create()

	t.Run("retrievable just before expiry", func(t *testing.T) {
		s.CreatedAt = time.Now().Add(-expiry + time.Minute)
		if st.Get(s.ID) == nil {
			t.Error("expected session to be live before expiry")
		}
	})

	t.Run("absent and purged just after expiry", func(t *testing.T) {
		s.CreatedAt = time.Now().Add(-expiry - time.Minute)
		if st.Get(s.ID) != nil {
			t.Error("expected expired session to be gone")
		}
		if st.Count() != 0 {
			t.Errorf("expected purge on access, store still has %d sessions", st.Count())
		}
	})
}

func TestStoreDeleteIdempotent(t *testing.T) {
	st := NewStore(time.Hour, testLogger())
	s := st.Create()

	st.Delete(s.ID)
	st.Delete(s.ID) // second delete must not panic or error
	if st.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", st.Count())
	}
}

func TestStoreCleanupExpired(t *testing.T) {
	expiry := time.Hour
	st := NewStore(expiry, testLogger())

	live := st.Create()
	stale := st.Create()
	stale.CreatedAt = time.Now().Add(-2 * expiry)

	if got := st.CleanupExpired(); got != 1 {
		t.Errorf("expected 1 purged session, got %d", got)
	}
	if st.Get(live.ID) == nil {
		t.Error("live session should survive cleanup")
	}
	if st.Count() != 1 {
		t.Errorf("expected 1 remaining session, got %d", st.Count())
	}
}

func TestStoreCleanupSchedule(t *testing.T) {
	st := NewStore(time.Hour, testLogger())
	if err := st.StartCleanup(time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Second start is a no-op.
	if err := st.StartCleanup(time.Minute); err != nil {
		t.Fatalf("unexpected error on restart: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	st.StopCleanup(ctx)
}
