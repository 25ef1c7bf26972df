// Package forward implements the message-forwarding pipeline: a single
// consumer loop drains the engine source, normalizes each message into a
// wire payload and hands it to a delivery sink, best effort.
package forward

import "github.com/ferrygo/wcfhttp/internal/wcf"

// Payload is the wire-ready representation of one message, as POSTed to the
// callback endpoint or published to the broker.
type Payload struct {
	Id      uint64 `json:"id"`
	Ts      int64  `json:"ts"`
	Sign    string `json:"sign"`
	Type    int    `json:"type"`
	Xml     string `json:"xml"`
	Sender  string `json:"sender"`
	Roomid  string `json:"roomid"`
	Content string `json:"content"`
	Thumb   string `json:"thumb"`
	Extra   string `json:"extra"`
	IsAt    bool   `json:"is_at"`
	IsSelf  bool   `json:"is_self"`
	IsGroup bool   `json:"is_group"`
}

// MentionCheck reports whether m @-mentions wxid.
type MentionCheck func(m *wcf.Message, wxid string) bool

// Normalizer maps messages to payloads against the identity the engine is
// logged in as, captured once at startup. Payload is a pure function: no
// I/O, no state beyond the fixed identity.
type Normalizer struct {
	self string
	isAt MentionCheck
}

// NewNormalizer builds a Normalizer for the given local identity. isAt is
// the engine-supplied mention check, normally wcf.MentionsUser.
func NewNormalizer(self string, isAt MentionCheck) *Normalizer {
	return &Normalizer{self: self, isAt: isAt}
}

// Payload derives the wire payload for m.
func (n *Normalizer) Payload(m *wcf.Message) Payload {
	return Payload{
		Id:      m.Id,
		Ts:      m.Ts,
		Sign:    m.Sign,
		Type:    m.Type,
		Xml:     m.Xml,
		Sender:  m.Sender,
		Roomid:  m.Roomid,
		Content: m.Content,
		Thumb:   m.Thumb,
		Extra:   m.Extra,
		IsAt:    n.isAt(m, n.self),
		IsSelf:  m.FromUser(n.self),
		IsGroup: m.IsGroup(),
	}
}
