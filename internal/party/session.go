package party

import (
	"log"
	"sort"
	"sync"
	"time"
)

type Role string

const (
	RoleHost   Role = "host"
	RoleMember Role = "member"
)

type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusReconnecting Status = "reconnecting"
)

// Identity is who a connection claims to be. For registered users UserID is the
// stable public id from the auth collaborator; guests get a generated one.
type Identity struct {
	UserID      string
	DisplayName string
	Avatar      string
	Guest       bool
}

type member struct {
	info MemberInfo
	conn Conn
	// graceSeq invalidates pending grace timers; a timer only purges if the
	// sequence it captured is still current.
	graceSeq int
}

// Session owns all mutable state of one party: member list, media state and
// chat log. Every mutation runs as one non-preemptible step on the session's
// own goroutine, so no locking is needed on party state. Events for one party
// are processed in the order received; nothing blocks the loop.
type Session struct {
	code      string
	name      string
	creatorID string
	createdAt time.Time

	cfg    Config
	mirror Mirror
	// release hands the code back to the registry once the party dies.
	release func(code string)

	cmds      chan func()
	done      chan struct{}
	closeOnce sync.Once

	// owned by the run loop
	members map[string]*member
	media   MediaState
	chat    *chatLog
	strokes []Stroke
	// chatEnabled gates non-host messages; the host toggles it.
	chatEnabled bool
	// emptySeq invalidates pending empty-party timers, like member.graceSeq.
	emptySeq int
}

func newSession(code, name string, creator Identity, mediaRef string, cfg Config, mirror Mirror, release func(string)) *Session {
	now := time.Now()
	s := &Session{
		code:      code,
		name:      name,
		creatorID: creator.UserID,
		createdAt: now,
		cfg:       cfg,
		mirror:    mirror,
		release:   release,
		cmds:      make(chan func(), 64),
		done:      make(chan struct{}),
		members:   make(map[string]*member),
		media: MediaState{
			Playing:   false,
			Position:  0,
			Version:   0,
			UpdatedAt: now,
			MediaRef:  mediaRef,
		},
		chat:        newChatLog(cfg.ChatTail),
		chatEnabled: true,
	}
	// A party nobody ever connects to must not outlive the grace period.
	s.startEmptyGrace()
	return s
}

// Code returns the party's normalized code.
func (s *Session) Code() string { return s.code }

func (s *Session) run() {
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.done:
			return
		}
	}
}

// do posts one step to the session loop. It fails only when the party is gone.
func (s *Session) do(fn func()) error {
	select {
	case s.cmds <- fn:
		return nil
	case <-s.done:
		return ErrPartyClosed
	}
}

// call posts a step and waits for its result.
func (s *Session) call(fn func() error) error {
	errc := make(chan error, 1)
	if err := s.do(func() { errc <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-s.done:
		// The loop stopped; the step may still have run just before.
		select {
		case err := <-errc:
			return err
		default:
			return ErrPartyClosed
		}
	}
}

// Join binds a connection to a participant slot. Unknown identities become new
// members (host if the party has none); a known disconnected identity gets its
// slot back with the grace timer cancelled. A second live connection for the
// same identity supersedes the first. Every joining connection receives a full
// snapshot, never a replay of intermediate commands.
func (s *Session) Join(id Identity, conn Conn) error {
	return s.call(func() error {
		m, known := s.members[id.UserID]
		isNew := !known
		if !known {
			if s.cfg.MaxMembers > 0 && len(s.members) >= s.cfg.MaxMembers {
				return ErrCapacityExceeded
			}
			now := time.Now()
			m = &member{info: MemberInfo{
				UserID:      id.UserID,
				DisplayName: id.DisplayName,
				Avatar:      id.Avatar,
				Guest:       id.Guest,
				Role:        RoleMember,
				Status:      StatusConnected,
				JoinedAt:    now,
				LastSeen:    now,
			}}
			s.members[id.UserID] = m
		} else {
			if m.conn != nil {
				// Duplicate identity: the newer connection wins.
				old := m.conn
				old.Send(Event{Type: EventError, Data: ErrorData{
					Kind:   ErrorKindSuperseded,
					Detail: ErrConnectionSuperseded.Error(),
				}})
				old.Close()
			}
			m.info.Status = StatusReconnecting
			m.graceSeq++
			if id.DisplayName != "" {
				m.info.DisplayName = id.DisplayName
			}
			if id.Avatar != "" {
				m.info.Avatar = id.Avatar
			}
		}

		m.conn = conn
		m.info.Status = StatusConnected
		m.info.LastSeen = time.Now()
		s.emptySeq++
		s.ensureHost()
		if isNew {
			s.mirror.MemberJoined(s.code, m.info)
		}

		conn.Send(Event{Type: EventSnapshot, Data: s.snapshot()})
		s.broadcast(Event{Type: EventMemberUpdate, Data: s.memberList()})
		log.Printf("party %s: %s joined (%d members)", s.code, m.info.DisplayName, len(s.members))
		return nil
	})
}

// Disconnect reports that conn was lost. It is a no-op unless conn is still the
// connection bound to the participant; the slot is reserved for the grace
// period before being purged.
func (s *Session) Disconnect(userID string, conn Conn) {
	_ = s.do(func() {
		m, ok := s.members[userID]
		if !ok || m.conn != conn {
			return
		}
		m.conn = nil
		m.info.Status = StatusDisconnected
		m.info.LastSeen = time.Now()
		s.startGrace(m)
		if s.connectedCount() == 0 {
			s.startEmptyGrace()
		}
		s.broadcast(Event{Type: EventMemberUpdate, Data: s.memberList()})
		log.Printf("party %s: %s disconnected, grace %s", s.code, m.info.DisplayName, s.cfg.GracePeriod)
	})
}

// Leave is an explicit departure: the participant is purged immediately,
// bypassing the grace timer.
func (s *Session) Leave(userID string) error {
	return s.call(func() error {
		m, ok := s.members[userID]
		if !ok {
			return ErrNotAMember
		}
		if m.conn != nil {
			m.conn.Close()
			m.conn = nil
		}
		s.purge(m)
		return nil
	})
}

// Media applies a host playback command and broadcasts the new state. Stale
// commands return ErrStaleCommand with no state change and no broadcast.
func (s *Session) Media(userID string, cmd MediaCommand) error {
	return s.call(func() error {
		m, ok := s.members[userID]
		if !ok {
			return ErrNotAMember
		}
		if m.info.Role != RoleHost {
			return ErrNotAuthorized
		}
		if err := s.media.apply(cmd, time.Now()); err != nil {
			return err
		}
		s.broadcast(Event{Type: EventMediaUpdate, Data: s.media})
		s.mirror.MediaUpdated(s.code, s.media)
		return nil
	})
}

// Chat assigns the next sequence number to a message and fans it out to every
// connected member, including the sender.
func (s *Session) Chat(userID, body string) (Message, error) {
	var msg Message
	err := s.call(func() error {
		m, ok := s.members[userID]
		if !ok {
			return ErrNotAMember
		}
		if !s.chatEnabled && m.info.Role != RoleHost {
			return ErrNotAuthorized
		}
		msg = s.chat.append(userID, m.info.DisplayName, body, time.Now())
		s.broadcast(Event{Type: EventChatMessage, Data: msg})
		s.mirror.MessagePosted(s.code, msg)
		return nil
	})
	return msg, err
}

// Draw appends a whiteboard stroke and relays it to every other connected
// member. The full stroke history replays to joiners through the snapshot.
func (s *Session) Draw(userID string, st Stroke) error {
	return s.call(func() error {
		if _, ok := s.members[userID]; !ok {
			return ErrNotAMember
		}
		s.strokes = append(s.strokes, st)
		s.broadcastExcept(userID, Event{Type: EventWhiteboardDraw, Data: st})
		return nil
	})
}

// ClearWhiteboard drops the stroke history for everyone.
func (s *Session) ClearWhiteboard(userID string) error {
	return s.call(func() error {
		if _, ok := s.members[userID]; !ok {
			return ErrNotAMember
		}
		s.strokes = nil
		s.broadcast(Event{Type: EventWhiteboardClear, Data: nil})
		return nil
	})
}

// Kick removes a participant on the host's order, bypassing the grace period.
// The kicked connection is told why before it is closed.
func (s *Session) Kick(hostID, targetID string) error {
	return s.call(func() error {
		h, ok := s.members[hostID]
		if !ok {
			return ErrNotAMember
		}
		if h.info.Role != RoleHost {
			return ErrNotAuthorized
		}
		target, ok := s.members[targetID]
		if !ok {
			return ErrNotAMember
		}
		if target.conn != nil {
			target.conn.Send(Event{Type: EventError, Data: ErrorData{
				Kind:   ErrorKindKicked,
				Detail: "removed by the host",
			}})
			target.conn.Close()
			target.conn = nil
		}
		log.Printf("party %s: %s kicked by host", s.code, target.info.DisplayName)
		s.purge(target)
		return nil
	})
}

// SetChatEnabled lets the host mute or unmute the party chat. The host can
// still post while chat is off.
func (s *Session) SetChatEnabled(userID string, enabled bool) error {
	return s.call(func() error {
		m, ok := s.members[userID]
		if !ok {
			return ErrNotAMember
		}
		if m.info.Role != RoleHost {
			return ErrNotAuthorized
		}
		if s.chatEnabled == enabled {
			return nil
		}
		s.chatEnabled = enabled
		s.broadcast(Event{Type: EventChatToggle, Data: ChatToggleData{Enabled: enabled}})
		return nil
	})
}

// Snapshot returns the party's complete current state.
func (s *Session) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.call(func() error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// CloseBy closes the party on behalf of a participant; only the host may.
func (s *Session) CloseBy(userID string) error {
	return s.call(func() error {
		m, ok := s.members[userID]
		if !ok {
			return ErrNotAMember
		}
		if m.info.Role != RoleHost {
			return ErrNotAuthorized
		}
		s.close("closed by host")
		return nil
	})
}

// Close destroys the party unconditionally, detaching all participants.
func (s *Session) Close() {
	_ = s.do(func() { s.close("closed") })
}

// ---- steps below run only on the session goroutine ----

func (s *Session) snapshot() Snapshot {
	var strokes []Stroke
	if len(s.strokes) > 0 {
		strokes = append(strokes, s.strokes...)
	}
	return Snapshot{
		Code:        s.code,
		Name:        s.name,
		CreatorID:   s.creatorID,
		CreatedAt:   s.createdAt,
		Media:       s.media,
		Members:     s.memberList(),
		Chat:        s.chat.recent(),
		Whiteboard:  strokes,
		ChatEnabled: s.chatEnabled,
	}
}

func (s *Session) memberList() []MemberInfo {
	out := make([]MemberInfo, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m.info)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// broadcast pushes an event to every connected member. A stalled client's
// connection is closed; its gateway read loop then reports the disconnect and
// presence takes over.
func (s *Session) broadcast(ev Event) {
	for _, m := range s.members {
		if m.conn == nil {
			continue
		}
		if !m.conn.Send(ev) {
			m.conn.Close()
		}
	}
}

// broadcastExcept is broadcast minus one member, for events the sender already
// applied locally.
func (s *Session) broadcastExcept(userID string, ev Event) {
	for id, m := range s.members {
		if id == userID || m.conn == nil {
			continue
		}
		if !m.conn.Send(ev) {
			m.conn.Close()
		}
	}
}

func (s *Session) connectedCount() int {
	n := 0
	for _, m := range s.members {
		if m.info.Status == StatusConnected {
			n++
		}
	}
	return n
}

// startEmptyGrace arms the zero-connected-participants timer: a party that
// nobody is connected to for a full grace period is destroyed, whether its
// creator never joined or every member dropped. Any join invalidates the
// pending timer.
func (s *Session) startEmptyGrace() {
	s.emptySeq++
	seq := s.emptySeq
	time.AfterFunc(s.cfg.GracePeriod, func() {
		_ = s.do(func() {
			if s.emptySeq != seq || s.connectedCount() > 0 {
				return
			}
			s.close("empty after grace period")
		})
	})
}

func (s *Session) startGrace(m *member) {
	m.graceSeq++
	seq := m.graceSeq
	userID := m.info.UserID
	time.AfterFunc(s.cfg.GracePeriod, func() {
		_ = s.do(func() {
			mm, ok := s.members[userID]
			if !ok || mm.graceSeq != seq || mm.info.Status == StatusConnected {
				return
			}
			log.Printf("party %s: %s purged after grace period", s.code, mm.info.DisplayName)
			s.purge(mm)
		})
	})
}

func (s *Session) purge(m *member) {
	wasHost := m.info.Role == RoleHost
	delete(s.members, m.info.UserID)
	s.mirror.MemberLeft(s.code, m.info.UserID)

	if len(s.members) == 0 {
		s.close("last member left")
		return
	}
	if wasHost {
		s.ensureHost()
	}
	s.broadcast(Event{Type: EventMemberUpdate, Data: s.memberList()})
}

// ensureHost keeps the exactly-one-host invariant: if no member holds the role,
// it goes to the longest-tenured connected member.
func (s *Session) ensureHost() {
	for _, m := range s.members {
		if m.info.Role == RoleHost {
			return
		}
	}
	var next *member
	for _, m := range s.members {
		if m.info.Status != StatusConnected {
			continue
		}
		if next == nil || m.info.JoinedAt.Before(next.info.JoinedAt) {
			next = m
		}
	}
	if next != nil {
		next.info.Role = RoleHost
		log.Printf("party %s: host transferred to %s", s.code, next.info.DisplayName)
	}
}

func (s *Session) close(reason string) {
	s.closeOnce.Do(func() {
		for _, m := range s.members {
			if m.conn != nil {
				m.conn.Close()
				m.conn = nil
			}
		}
		s.members = map[string]*member{}
		s.mirror.PartyClosed(s.code)
		if s.release != nil {
			s.release(s.code)
		}
		close(s.done)
		log.Printf("party %s: %s", s.code, reason)
	})
}
