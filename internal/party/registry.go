package party

import (
	"log"
	"sync"
	"time"
)

// Config carries the engine tunables. Zero values fall back to defaults.
type Config struct {
	// GracePeriod is how long a disconnected participant's slot is reserved.
	GracePeriod time.Duration
	// CodeCooldown is how long after a party closes its code stays unusable,
	// so a stale rejoining client cannot land in an unrelated new party.
	CodeCooldown time.Duration
	// MaxParties caps the number of live parties.
	MaxParties int
	// MaxMembers caps participants per party. Zero means unlimited.
	MaxMembers int
	// ChatTail is how many recent messages are retained for reconnect replay.
	ChatTail int
}

func (c Config) withDefaults() Config {
	if c.GracePeriod <= 0 {
		c.GracePeriod = 30 * time.Second
	}
	if c.CodeCooldown <= 0 {
		c.CodeCooldown = 5 * time.Minute
	}
	if c.MaxParties <= 0 {
		c.MaxParties = 1000
	}
	if c.ChatTail <= 0 {
		c.ChatTail = 100
	}
	return c
}

// Registry is the single source of truth for live parties and code uniqueness:
// no two live parties share a code at any instant, and a released code is
// quarantined for the cool-down window before reuse.
type Registry struct {
	cfg    Config
	mirror Mirror

	mu       sync.Mutex
	parties  map[string]*Session
	cooldown map[string]time.Time
}

func NewRegistry(cfg Config, mirror Mirror) *Registry {
	if mirror == nil {
		mirror = noopMirror{}
	}
	return &Registry{
		cfg:      cfg.withDefaults(),
		mirror:   mirror,
		parties:  make(map[string]*Session),
		cooldown: make(map[string]time.Time),
	}
}

// Create registers a new party with a fresh code and an initial media state of
// position 0, paused. The creator does not become a member until they join.
func (r *Registry) Create(creator Identity, name, mediaRef string) (*Session, error) {
	r.mu.Lock()

	now := time.Now()
	for code, until := range r.cooldown {
		if now.After(until) {
			delete(r.cooldown, code)
		}
	}

	if len(r.parties) >= r.cfg.MaxParties {
		r.mu.Unlock()
		return nil, ErrCapacityExceeded
	}

	var code string
	for {
		code = generateCode()
		if _, live := r.parties[code]; live {
			continue
		}
		if _, cooling := r.cooldown[code]; cooling {
			continue
		}
		break
	}

	s := newSession(code, name, creator, mediaRef, r.cfg, r.mirror, r.release)
	r.parties[code] = s
	r.mu.Unlock()

	go s.run()
	snap, stepErr := s.Snapshot()
	if stepErr == nil {
		r.mirror.PartyCreated(snap, creator.UserID)
	}
	log.Printf("party %s: created by %s", code, creator.UserID)
	return s, nil
}

// Get resolves a party code (case-insensitively) against the live set.
func (r *Registry) Get(code string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.parties[NormalizeCode(code)]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close destroys a live party, detaching all its participants.
func (r *Registry) Close(code string) error {
	s, err := r.Get(code)
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

// Count reports the number of live parties.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.parties)
}

// List snapshots every live party. Parties that close mid-iteration are skipped.
func (r *Registry) List() []Snapshot {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.parties))
	for _, s := range r.parties {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		if snap, err := s.Snapshot(); err == nil {
			out = append(out, snap)
		}
	}
	return out
}

// release is called by a dying session; the code enters cool-down.
func (r *Registry) release(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.parties, code)
	r.cooldown[code] = time.Now().Add(r.cfg.CodeCooldown)
}
