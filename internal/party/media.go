package party

import "time"

// MediaState is the single authoritative playback state of a party. Position is
// interpreted relative to UpdatedAt while playing: effective position =
// Position + elapsed-since-update.
type MediaState struct {
	Playing   bool      `json:"playing"`
	Position  float64   `json:"position"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"server_timestamp"`
	MediaRef  string    `json:"media_ref"`
}

// EffectivePosition extrapolates the playback position to now. Clients do the
// same locally with the broadcast server timestamp; the server never re-polls.
func (m MediaState) EffectivePosition(now time.Time) float64 {
	if !m.Playing {
		return m.Position
	}
	return m.Position + now.Sub(m.UpdatedAt).Seconds()
}

type MediaCommandKind string

const (
	MediaPlay        MediaCommandKind = "play"
	MediaPause       MediaCommandKind = "pause"
	MediaSeek        MediaCommandKind = "seek"
	MediaChangeMedia MediaCommandKind = "change_media"
)

// MediaCommand is a host-issued playback mutation. Version is the version the
// command proposes (the last one the host observed, plus one); a command whose
// version is not ahead of the current state is stale and ignored.
type MediaCommand struct {
	Kind     MediaCommandKind
	Position float64
	MediaRef string
	Version  uint64
}

// apply mutates the state for an accepted command. The version counter strictly
// increases on every accepted mutation, regardless of how far ahead the
// proposed version was.
func (m *MediaState) apply(cmd MediaCommand, now time.Time) error {
	if cmd.Version <= m.Version {
		return ErrStaleCommand
	}

	switch cmd.Kind {
	case MediaPlay:
		m.Playing = true
		m.Position = cmd.Position
	case MediaPause:
		m.Playing = false
		m.Position = cmd.Position
	case MediaSeek:
		m.Position = cmd.Position
	case MediaChangeMedia:
		m.MediaRef = cmd.MediaRef
		m.Playing = false
		m.Position = 0
	default:
		return ErrStaleCommand
	}

	m.Version++
	m.UpdatedAt = now
	return nil
}
