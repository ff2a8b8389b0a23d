package ws

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alok-bhadauria/WatchParty/internal/party"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const joinTimeout = 10 * time.Second

// IdentityResolver is the authentication collaborator: it turns a token into a
// participant identity and never sees the connection itself.
type IdentityResolver interface {
	IdentityFromToken(token, displayName, avatar string) (party.Identity, error)
}

// Gateway is the single entry point for persistent connections. It upgrades,
// authenticates the first frame against a party code and identity, then routes
// inbound events to the party's session. A decode or auth failure closes only
// the offending connection.
type Gateway struct {
	registry *party.Registry
	auth     IdentityResolver
	upgrader websocket.Upgrader
}

func NewGateway(registry *party.Registry, auth IdentityResolver) *Gateway {
	return &Gateway{
		registry: registry,
		auth:     auth,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ClientEvent is the inbound frame. Type selects which fields matter.
type ClientEvent struct {
	Type        string        `json:"type"`
	PartyCode   string        `json:"party_code,omitempty"`
	Token       string        `json:"token,omitempty"`
	DisplayName string        `json:"display_name,omitempty"`
	Avatar      string        `json:"avatar,omitempty"`
	Position    float64       `json:"position,omitempty"`
	Version     uint64        `json:"version,omitempty"`
	MediaRef    string        `json:"media_ref,omitempty"`
	Body        string        `json:"body,omitempty"`
	Stroke      *party.Stroke `json:"stroke,omitempty"`
	TargetID    string        `json:"target_id,omitempty"`
	Enabled     bool          `json:"enabled,omitempty"`
}

const (
	eventJoin            = "join"
	eventLeave           = "leave"
	eventPlay            = "play"
	eventPause           = "pause"
	eventSeek            = "seek"
	eventChangeMedia     = "change_media"
	eventChat            = "chat"
	eventWhiteboardDraw  = "whiteboard_draw"
	eventWhiteboardClear = "whiteboard_clear"
	eventKick            = "kick"
	eventChatToggle      = "chat_toggle"
)

// Handle serves GET /ws. The first frame must be a join; everything after is
// routed until the socket dies or the client leaves.
func (g *Gateway) Handle(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	client := newClient(conn)
	go client.writePump()
	defer client.Close()

	conn.SetReadDeadline(time.Now().Add(joinTimeout))
	var first ClientEvent
	if err := conn.ReadJSON(&first); err != nil || first.Type != eventJoin {
		client.Send(errorEvent(party.ErrorKindBadEvent, "expected a join event"))
		return
	}
	conn.SetReadDeadline(time.Time{})

	id, err := g.auth.IdentityFromToken(first.Token, first.DisplayName, first.Avatar)
	if err != nil {
		client.Send(errorEvent(party.ErrorKindInvalidToken, "identity token rejected"))
		return
	}

	sess, err := g.registry.Get(first.PartyCode)
	if err != nil {
		client.Send(errorEvent(party.ErrorKindNotFound, "no such party"))
		return
	}

	if err := sess.Join(id, client); err != nil {
		client.Send(errorEventFor(err))
		return
	}
	defer sess.Disconnect(id.UserID, client)

	for {
		var ev ClientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		if !g.dispatch(sess, id, client, ev) {
			return
		}
	}
}

// dispatch routes one inbound event. It reports false when the connection
// should end.
func (g *Gateway) dispatch(sess *party.Session, id party.Identity, client *Client, ev ClientEvent) bool {
	switch ev.Type {
	case eventJoin:
		// Re-joining on a live connection is idempotent: resend the snapshot.
		if snap, err := sess.Snapshot(); err == nil {
			client.Send(party.Event{Type: party.EventSnapshot, Data: snap})
		}

	case eventLeave:
		_ = sess.Leave(id.UserID)
		return false

	case eventPlay, eventPause, eventSeek, eventChangeMedia:
		cmd := party.MediaCommand{
			Kind:     mediaKind(ev.Type),
			Position: ev.Position,
			MediaRef: ev.MediaRef,
			Version:  ev.Version,
		}
		err := sess.Media(id.UserID, cmd)
		if err != nil && !errors.Is(err, party.ErrStaleCommand) {
			client.Send(errorEventFor(err))
		}

	case eventChat:
		if strings.TrimSpace(ev.Body) == "" {
			return true
		}
		if _, err := sess.Chat(id.UserID, ev.Body); err != nil {
			client.Send(errorEventFor(err))
		}

	case eventWhiteboardDraw:
		if ev.Stroke == nil {
			return true
		}
		if err := sess.Draw(id.UserID, *ev.Stroke); err != nil {
			client.Send(errorEventFor(err))
		}

	case eventWhiteboardClear:
		if err := sess.ClearWhiteboard(id.UserID); err != nil {
			client.Send(errorEventFor(err))
		}

	case eventKick:
		if err := sess.Kick(id.UserID, ev.TargetID); err != nil {
			client.Send(errorEventFor(err))
		}

	case eventChatToggle:
		if err := sess.SetChatEnabled(id.UserID, ev.Enabled); err != nil {
			client.Send(errorEventFor(err))
		}

	default:
		client.Send(errorEvent(party.ErrorKindBadEvent, "unknown event type: "+ev.Type))
	}
	return true
}

func mediaKind(eventType string) party.MediaCommandKind {
	switch eventType {
	case eventPlay:
		return party.MediaPlay
	case eventPause:
		return party.MediaPause
	case eventSeek:
		return party.MediaSeek
	default:
		return party.MediaChangeMedia
	}
}

func errorEvent(kind, detail string) party.Event {
	return party.Event{Type: party.EventError, Data: party.ErrorData{Kind: kind, Detail: detail}}
}

// errorEventFor maps core errors onto wire error kinds. These frames go only to
// the connection that caused them, never to the party.
func errorEventFor(err error) party.Event {
	switch {
	case errors.Is(err, party.ErrNotAuthorized):
		return errorEvent(party.ErrorKindNotAuthorized, err.Error())
	case errors.Is(err, party.ErrNotAMember):
		return errorEvent(party.ErrorKindNotAMember, err.Error())
	case errors.Is(err, party.ErrCapacityExceeded):
		return errorEvent(party.ErrorKindCapacity, err.Error())
	case errors.Is(err, party.ErrInvalidToken):
		return errorEvent(party.ErrorKindInvalidToken, err.Error())
	case errors.Is(err, party.ErrNotFound), errors.Is(err, party.ErrPartyClosed):
		return errorEvent(party.ErrorKindNotFound, err.Error())
	default:
		return errorEvent(party.ErrorKindBadEvent, err.Error())
	}
}
