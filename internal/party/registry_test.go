package party

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		GracePeriod:  40 * time.Millisecond,
		CodeCooldown: 60 * time.Millisecond,
		MaxParties:   4,
		MaxMembers:   8,
		ChatTail:     5,
	}
}

func TestRegistryCodes(t *testing.T) {
	r := NewRegistry(testConfig(), nil)
	creator := Identity{UserID: "u-host", DisplayName: "Host"}

	s, err := r.Create(creator, "movie night", "video-1")
	if err != nil {
		t.Fatal(err)
	}

	code := s.Code()
	if len(code) != codeLength {
		t.Fatalf("code %q has length %d, want %d", code, len(code), codeLength)
	}
	for _, ch := range code {
		if !strings.ContainsRune(codeAlphabet, ch) {
			t.Fatalf("code %q contains %q outside the alphabet", code, ch)
		}
	}

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		got, err := r.Get(strings.ToLower(code))
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Fatal("lowercase lookup resolved a different session")
		}
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		if _, err := r.Get("ZZZZZ2"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	})
}

func TestRegistryCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxParties = 2
	r := NewRegistry(cfg, nil)
	creator := Identity{UserID: "u-host"}

	for i := 0; i < 2; i++ {
		if _, err := r.Create(creator, "p", ""); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := r.Create(creator, "p", ""); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}
}

func TestRegistryCodeCooldown(t *testing.T) {
	r := NewRegistry(testConfig(), nil)
	creator := Identity{UserID: "u-host"}

	s, err := r.Create(creator, "p", "")
	if err != nil {
		t.Fatal(err)
	}
	code := s.Code()

	if err := r.Close(code); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		_, err := r.Get(code)
		return errors.Is(err, ErrNotFound)
	})

	r.mu.Lock()
	until, cooling := r.cooldown[code]
	r.mu.Unlock()
	if !cooling {
		t.Fatal("released code did not enter cool-down")
	}
	if !until.After(time.Now()) {
		t.Fatal("cool-down deadline is not in the future")
	}

	// Creating after the window purges the expired entry; the code is reusable.
	time.Sleep(80 * time.Millisecond)
	if _, err := r.Create(creator, "p2", ""); err != nil {
		t.Fatal(err)
	}
	r.mu.Lock()
	_, cooling = r.cooldown[code]
	r.mu.Unlock()
	if cooling {
		t.Fatal("expired cool-down entry was not released")
	}
}

func TestNeverJoinedPartyIsReaped(t *testing.T) {
	r := NewRegistry(testConfig(), nil)
	s, err := r.Create(Identity{UserID: "creator"}, "ghost town", "")
	if err != nil {
		t.Fatal(err)
	}

	// Nobody ever connects; the party must not outlive the grace period or
	// keep holding a capacity slot.
	waitFor(t, func() bool {
		_, err := r.Get(s.Code())
		return errors.Is(err, ErrNotFound)
	})
	if r.Count() != 0 {
		t.Fatalf("registry still holds %d parties", r.Count())
	}
}

func TestJoinKeepsEmptyPartyAlive(t *testing.T) {
	cfg := testConfig()
	r := NewRegistry(cfg, nil)
	s, err := r.Create(Identity{UserID: "creator"}, "movie night", "")
	if err != nil {
		t.Fatal(err)
	}

	conn := &fakeConn{}
	if err := s.Join(Identity{UserID: "u1", DisplayName: "alice"}, conn); err != nil {
		t.Fatal(err)
	}

	time.Sleep(3 * cfg.GracePeriod)
	if _, err := r.Get(s.Code()); err != nil {
		t.Fatalf("party with a connected member was reaped: %v", err)
	}

	// Once the last connection drops and nobody returns, the party goes too.
	s.Disconnect("u1", conn)
	waitFor(t, func() bool {
		_, err := r.Get(s.Code())
		return errors.Is(err, ErrNotFound)
	})
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
