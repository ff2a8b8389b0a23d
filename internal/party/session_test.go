package party

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (c *fakeConn) Send(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) ofType(typ string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, ev := range c.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (c *fakeConn) lastMembers(t *testing.T) []MemberInfo {
	t.Helper()
	evs := c.ofType(EventMemberUpdate)
	if len(evs) == 0 {
		t.Fatal("no member updates received")
	}
	return evs[len(evs)-1].Data.([]MemberInfo)
}

func newTestParty(t *testing.T, cfg Config) (*Registry, *Session) {
	t.Helper()
	r := NewRegistry(cfg, nil)
	s, err := r.Create(Identity{UserID: "creator"}, "movie night", "video-1")
	if err != nil {
		t.Fatal(err)
	}
	return r, s
}

func join(t *testing.T, s *Session, userID, name string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	if err := s.Join(Identity{UserID: userID, DisplayName: name}, conn); err != nil {
		t.Fatalf("join %s: %v", userID, err)
	}
	return conn
}

func TestJoinSnapshotAndHostRole(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	conn := join(t, s, "u1", "alice")

	snaps := conn.ofType(EventSnapshot)
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	snap := snaps[0].Data.(Snapshot)
	if snap.Code != s.Code() {
		t.Fatalf("snapshot code %q, want %q", snap.Code, s.Code())
	}
	if snap.Media.Playing || snap.Media.Position != 0 || snap.Media.Version != 0 {
		t.Fatalf("fresh party media state: %+v", snap.Media)
	}
	if snap.Media.MediaRef != "video-1" {
		t.Fatalf("media ref = %q", snap.Media.MediaRef)
	}

	members := conn.lastMembers(t)
	if len(members) != 1 || members[0].Role != RoleHost {
		t.Fatalf("first joiner should be the sole host, got %+v", members)
	}
}

func TestNoDuplicateMembers(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	join(t, s, "u1", "alice")
	conn2 := join(t, s, "u2", "bob")

	// Same identity joining again must supersede, never duplicate.
	conn3 := join(t, s, "u2", "bob")

	waitFor(t, func() bool { return conn2.isClosed() })
	evs := conn2.ofType(EventError)
	if len(evs) == 0 || evs[0].Data.(ErrorData).Kind != ErrorKindSuperseded {
		t.Fatal("superseded connection did not get a superseded error")
	}
	if evs[0].Data.(ErrorData).Detail != ErrConnectionSuperseded.Error() {
		t.Fatalf("superseded detail = %q", evs[0].Data.(ErrorData).Detail)
	}

	members := conn3.lastMembers(t)
	if len(members) != 2 {
		t.Fatalf("member list has %d entries, want 2: %+v", len(members), members)
	}
	seen := map[string]bool{}
	for _, m := range members {
		if seen[m.UserID] {
			t.Fatalf("duplicate member entry for %s", m.UserID)
		}
		seen[m.UserID] = true
	}
}

func TestHostAuthorityScenario(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	hostConn := join(t, s, "host", "alice")
	memberConn := join(t, s, "member", "bob")

	if err := s.Media("host", MediaCommand{Kind: MediaPlay, Position: 10.0, Version: 1}); err != nil {
		t.Fatal(err)
	}

	updates := memberConn.ofType(EventMediaUpdate)
	if len(updates) != 1 {
		t.Fatalf("member got %d media updates, want 1", len(updates))
	}
	st := updates[0].Data.(MediaState)
	if !st.Playing || st.Position != 10.0 || st.Version != 1 {
		t.Fatalf("after play: %+v", st)
	}

	// A member's pause is rejected with no broadcast and no version bump.
	err := s.Media("member", MediaCommand{Kind: MediaPause, Position: 11, Version: 2})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("got %v, want ErrNotAuthorized", err)
	}
	if got := len(hostConn.ofType(EventMediaUpdate)); got != 1 {
		t.Fatalf("rejected command broadcast %d extra updates", got-1)
	}

	if err := s.Media("host", MediaCommand{Kind: MediaPause, Position: 12.5, Version: 2}); err != nil {
		t.Fatal(err)
	}
	updates = memberConn.ofType(EventMediaUpdate)
	st = updates[len(updates)-1].Data.(MediaState)
	if st.Playing || st.Position != 12.5 || st.Version != 2 {
		t.Fatalf("after pause: %+v", st)
	}

	// A delayed duplicate of the play command is absorbed silently.
	err = s.Media("host", MediaCommand{Kind: MediaPlay, Position: 10.0, Version: 1})
	if !errors.Is(err, ErrStaleCommand) {
		t.Fatalf("got %v, want ErrStaleCommand", err)
	}
	if got := len(memberConn.ofType(EventMediaUpdate)); got != 2 {
		t.Fatalf("stale command produced a broadcast (total %d)", got)
	}
}

func TestChatOrderingAndMembership(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	conn1 := join(t, s, "u1", "alice")
	join(t, s, "u2", "bob")

	m1, err := s.Chat("u1", "hi")
	if err != nil {
		t.Fatal(err)
	}
	m2, err := s.Chat("u2", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if m1.Seq != 1 || m2.Seq != 2 {
		t.Fatalf("got seqs %d, %d, want 1, 2", m1.Seq, m2.Seq)
	}

	// Sender receives its own message back, in order.
	got := conn1.ofType(EventChatMessage)
	if len(got) != 2 {
		t.Fatalf("sender saw %d messages, want 2", len(got))
	}
	for i, ev := range got {
		if ev.Data.(Message).Seq != uint64(i+1) {
			t.Fatalf("message %d delivered with seq %d", i, ev.Data.(Message).Seq)
		}
	}

	if _, err := s.Chat("stranger", "hey"); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("got %v, want ErrNotAMember", err)
	}
}

func TestLeaveDestroysEmptyParty(t *testing.T) {
	r, s := newTestParty(t, testConfig())
	join(t, s, "u1", "alice")

	if err := s.Leave("u1"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		_, err := r.Get(s.Code())
		return errors.Is(err, ErrNotFound)
	})
	if r.Count() != 0 {
		t.Fatalf("registry still holds %d parties", r.Count())
	}
}

func TestGracePeriodPurgeAndHostTransfer(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	hostConn := join(t, s, "host", "alice")
	memberConn := join(t, s, "member", "bob")

	s.Disconnect("host", hostConn)

	waitFor(t, func() bool {
		members := memberConn.lastMembers(t)
		if len(members) != 1 {
			return false
		}
		return members[0].UserID == "member" && members[0].Role == RoleHost
	})
}

func TestReconnectWithinGraceKeepsIdentity(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	hostConn := join(t, s, "host", "alice")
	join(t, s, "member", "bob")

	s.Disconnect("host", hostConn)

	// Reconnect before the grace period elapses.
	newConn := join(t, s, "host", "alice")

	snap := newConn.ofType(EventSnapshot)[0].Data.(Snapshot)
	if len(snap.Members) != 2 {
		t.Fatalf("snapshot has %d members, want 2", len(snap.Members))
	}
	for _, m := range snap.Members {
		if m.UserID == "host" && m.Role != RoleHost {
			t.Fatalf("reconnect lost the host role: %+v", m)
		}
	}

	// The original grace timer must not fire after reconnection.
	time.Sleep(80 * time.Millisecond)
	members := newConn.lastMembers(t)
	if len(members) != 2 {
		t.Fatalf("member purged despite reconnect: %+v", members)
	}
	snap2, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range snap2.Members {
		if m.UserID == "host" && m.Status != StatusConnected {
			t.Fatalf("reconnected member status = %s", m.Status)
		}
	}
}

func TestChatReplayOnReconnect(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	conn := join(t, s, "u1", "alice")
	join(t, s, "u2", "bob")

	for _, body := range []string{"one", "two", "three"} {
		if _, err := s.Chat("u2", body); err != nil {
			t.Fatal(err)
		}
	}

	s.Disconnect("u1", conn)
	newConn := join(t, s, "u1", "alice")

	snap := newConn.ofType(EventSnapshot)[0].Data.(Snapshot)
	if len(snap.Chat) != 3 {
		t.Fatalf("snapshot replayed %d messages, want 3", len(snap.Chat))
	}
	for i, msg := range snap.Chat {
		if msg.Seq != uint64(i+1) {
			t.Fatalf("replayed message %d has seq %d", i, msg.Seq)
		}
	}
}

func TestCloseByNonHost(t *testing.T) {
	r, s := newTestParty(t, testConfig())
	join(t, s, "host", "alice")
	join(t, s, "member", "bob")

	if err := s.CloseBy("member"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("got %v, want ErrNotAuthorized", err)
	}
	if err := s.CloseBy("host"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		_, err := r.Get(s.Code())
		return errors.Is(err, ErrNotFound)
	})
}

func TestWhiteboardDrawAndReplay(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	conn1 := join(t, s, "u1", "alice")
	conn2 := join(t, s, "u2", "bob")

	strokes := []Stroke{
		{PrevX: 0, PrevY: 0, X: 10, Y: 10},
		{PrevX: 10, PrevY: 10, X: 20, Y: 5},
	}
	for _, st := range strokes {
		if err := s.Draw("u1", st); err != nil {
			t.Fatal(err)
		}
	}

	// Strokes reach everyone but the drawer.
	if got := len(conn2.ofType(EventWhiteboardDraw)); got != 2 {
		t.Fatalf("observer saw %d strokes, want 2", got)
	}
	if got := len(conn1.ofType(EventWhiteboardDraw)); got != 0 {
		t.Fatalf("drawer got %d of its own strokes back", got)
	}

	if err := s.Draw("stranger", strokes[0]); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("got %v, want ErrNotAMember", err)
	}

	// A joiner receives the full history in its snapshot.
	conn3 := join(t, s, "u3", "carol")
	snap := conn3.ofType(EventSnapshot)[0].Data.(Snapshot)
	if len(snap.Whiteboard) != 2 || snap.Whiteboard[1] != strokes[1] {
		t.Fatalf("snapshot whiteboard: %+v", snap.Whiteboard)
	}

	// Any member may clear; the history is gone for later joiners too.
	if err := s.ClearWhiteboard("u2"); err != nil {
		t.Fatal(err)
	}
	if got := len(conn1.ofType(EventWhiteboardClear)); got != 1 {
		t.Fatalf("drawer saw %d clear events, want 1", got)
	}
	snap2, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap2.Whiteboard) != 0 {
		t.Fatalf("whiteboard still holds %d strokes after clear", len(snap2.Whiteboard))
	}
}

func TestHostKick(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	hostConn := join(t, s, "host", "alice")
	memberConn := join(t, s, "member", "bob")

	if err := s.Kick("member", "host"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("got %v, want ErrNotAuthorized", err)
	}
	if err := s.Kick("host", "nobody"); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("got %v, want ErrNotAMember", err)
	}

	if err := s.Kick("host", "member"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return memberConn.isClosed() })
	evs := memberConn.ofType(EventError)
	if len(evs) == 0 || evs[0].Data.(ErrorData).Kind != ErrorKindKicked {
		t.Fatal("kicked connection did not get a kicked error")
	}
	members := hostConn.lastMembers(t)
	if len(members) != 1 || members[0].UserID != "host" {
		t.Fatalf("member list after kick: %+v", members)
	}
}

func TestHostChatToggle(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	join(t, s, "host", "alice")
	memberConn := join(t, s, "member", "bob")

	if err := s.SetChatEnabled("member", false); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("got %v, want ErrNotAuthorized", err)
	}

	if err := s.SetChatEnabled("host", false); err != nil {
		t.Fatal(err)
	}
	evs := memberConn.ofType(EventChatToggle)
	if len(evs) != 1 || evs[0].Data.(ChatToggleData).Enabled {
		t.Fatal("members were not told chat is off")
	}

	if _, err := s.Chat("member", "hello?"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("got %v, want ErrNotAuthorized", err)
	}
	if _, err := s.Chat("host", "quiet please"); err != nil {
		t.Fatalf("host blocked from chat: %v", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.ChatEnabled {
		t.Fatal("snapshot still reports chat enabled")
	}

	if err := s.SetChatEnabled("host", true); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Chat("member", "finally"); err != nil {
		t.Fatalf("chat still blocked after re-enable: %v", err)
	}
}

func TestGuestFlagInMemberList(t *testing.T) {
	_, s := newTestParty(t, testConfig())
	conn := &fakeConn{}
	if err := s.Join(Identity{UserID: "g1", DisplayName: "drifter", Guest: true}, conn); err != nil {
		t.Fatal(err)
	}

	members := conn.lastMembers(t)
	if len(members) != 1 || !members[0].Guest {
		t.Fatalf("guest flag lost: %+v", members)
	}
}

func TestPartyMemberCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMembers = 2
	_, s := newTestParty(t, cfg)
	join(t, s, "u1", "alice")
	join(t, s, "u2", "bob")

	conn := &fakeConn{}
	err := s.Join(Identity{UserID: "u3", DisplayName: "carol"}, conn)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}
}
