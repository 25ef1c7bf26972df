package wcf

import "strings"

// Message is one inbound occurrence pushed by the engine: a chat message,
// a system notification, or a moments update when pyq receiving is on.
// Messages are read once, transformed and discarded; nothing mutates them.
type Message struct {
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
}

// IsGroup reports whether the message was sent in a chatroom.
func (m *Message) IsGroup() bool { return m.Roomid != "" }

// FromUser reports whether the message was sent by wxid.
func (m *Message) FromUser(wxid string) bool { return m.Sender == wxid }

// MentionsUser reports whether the message @-mentions wxid specifically.
// Only group messages carry mentions; the mentioned accounts are listed in
// the <atuserlist> element of the raw XML. An @-all broadcast addresses the
// whole room, not wxid, so it does not count.
func MentionsUser(m *Message, wxid string) bool {
	if wxid == "" || !m.IsGroup() {
		return false
	}
	if !strings.Contains(atUserList(m.Xml), wxid) {
		return false
	}
	for _, all := range []string{"@所有人", "@all", "@All"} {
		if strings.Contains(m.Content, all) {
			return false
		}
	}
	return true
}

// atUserList extracts the body of the <atuserlist> element, which may be
// wrapped in a CDATA section depending on the engine version.
func atUserList(xml string) string {
	open := strings.Index(xml, "<atuserlist>")
	if open < 0 {
		return ""
	}
	rest := xml[open+len("<atuserlist>"):]
	end := strings.Index(rest, "</atuserlist>")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
