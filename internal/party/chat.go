package party

import "time"

// Message is one chat entry. Once a sequence number is assigned the message is
// immutable; ordering is authoritative here, not at clients.
type Message struct {
	Seq        uint64    `json:"seq"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

// chatLog assigns per-party sequence numbers and keeps a bounded recent tail
// for reconnect replay. It is only ever touched from the party's session loop,
// so sequence assignment is atomic with respect to other posts in the party.
type chatLog struct {
	nextSeq uint64
	tail    []Message
	maxTail int
}

func newChatLog(maxTail int) *chatLog {
	if maxTail <= 0 {
		maxTail = 100
	}
	return &chatLog{nextSeq: 1, maxTail: maxTail}
}

func (l *chatLog) append(senderID, senderName, body string, now time.Time) Message {
	msg := Message{
		Seq:        l.nextSeq,
		SenderID:   senderID,
		SenderName: senderName,
		Body:       body,
		SentAt:     now,
	}
	l.nextSeq++

	l.tail = append(l.tail, msg)
	if len(l.tail) > l.maxTail {
		l.tail = l.tail[len(l.tail)-l.maxTail:]
	}
	return msg
}

// recent returns a copy of the retained tail, oldest first.
func (l *chatLog) recent() []Message {
	out := make([]Message, len(l.tail))
	copy(out, l.tail)
	return out
}
