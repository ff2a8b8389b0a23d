package party

import "time"

// Event is the envelope pushed to connected clients. The shape matches what the
// gateway writes on the wire: a type tag plus a type-specific payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	EventSnapshot        = "snapshot"
	EventMediaUpdate     = "media_update"
	EventMemberUpdate    = "member_update"
	EventChatMessage     = "chat_message"
	EventWhiteboardDraw  = "whiteboard_draw"
	EventWhiteboardClear = "whiteboard_clear"
	EventChatToggle      = "chat_toggle"
	EventError           = "error"
)

// ErrorData is the payload of an EventError frame. It is only ever sent to the
// connection that caused it, never broadcast.
type ErrorData struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

const (
	ErrorKindNotFound      = "not_found"
	ErrorKindNotAuthorized = "not_authorized"
	ErrorKindNotAMember    = "not_a_member"
	ErrorKindCapacity      = "capacity_exceeded"
	ErrorKindInvalidToken  = "invalid_token"
	ErrorKindSuperseded    = "connection_superseded"
	ErrorKindKicked        = "kicked"
	ErrorKindBadEvent      = "bad_event"
)

// Stroke is one whiteboard line segment in canvas coordinates.
type Stroke struct {
	PrevX float64 `json:"prev_x"`
	PrevY float64 `json:"prev_y"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// ChatToggleData is the payload of an EventChatToggle frame.
type ChatToggleData struct {
	Enabled bool `json:"enabled"`
}

// MemberInfo is the broadcast view of one participant.
type MemberInfo struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar,omitempty"`
	Guest       bool      `json:"guest,omitempty"`
	Role        Role      `json:"role"`
	Status      Status    `json:"status"`
	JoinedAt    time.Time `json:"joined_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// Snapshot is the complete state of a party sent to every (re)joining
// connection. Clients must never assume incremental-only state.
type Snapshot struct {
	Code        string       `json:"code"`
	Name        string       `json:"name,omitempty"`
	CreatorID   string       `json:"creator_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	Media       MediaState   `json:"media"`
	Members     []MemberInfo `json:"members"`
	Chat        []Message    `json:"chat"`
	Whiteboard  []Stroke     `json:"whiteboard,omitempty"`
	ChatEnabled bool         `json:"chat_enabled"`
}

// Conn is the gateway-side handle the session pushes events through. Send must
// never block; it reports false when the client cannot keep up, and the session
// treats that connection as dead.
type Conn interface {
	Send(ev Event) bool
	Close()
}

// Mirror receives best-effort copies of core state changes for durable storage.
// Implementations must return immediately; the session loop calls these inline.
type Mirror interface {
	PartyCreated(snap Snapshot, creatorID string)
	PartyClosed(code string)
	MemberJoined(code string, m MemberInfo)
	MemberLeft(code string, userID string)
	MessagePosted(code string, msg Message)
	MediaUpdated(code string, st MediaState)
}

type noopMirror struct{}

func (noopMirror) PartyCreated(Snapshot, string)   {}
func (noopMirror) PartyClosed(string)              {}
func (noopMirror) MemberJoined(string, MemberInfo) {}
func (noopMirror) MemberLeft(string, string)       {}
func (noopMirror) MessagePosted(string, Message)   {}
func (noopMirror) MediaUpdated(string, MediaState) {}
