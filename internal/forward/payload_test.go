package forward_test

import (
	"testing"

	"github.com/ferrygo/wcfhttp/internal/forward"
	"github.com/ferrygo/wcfhttp/internal/wcf"
)

func TestNormalizerFlags(t *testing.T) {
	cases := []struct {
		name      string
		msg       wcf.Message
		self      string
		wantAt    bool
		wantSelf  bool
		wantGroup bool
	}{
		{
			name:      "direct message from someone else",
			msg:       wcf.Message{Id: 1, Sender: "bob", Content: "hello"},
			self:      "alice",
			wantAt:    false,
			wantSelf:  false,
			wantGroup: false,
		},
		{
			name:     "own message",
			msg:      wcf.Message{Id: 2, Sender: "alice"},
			self:     "alice",
			wantSelf: true,
		},
		{
			name:      "group message without mention",
			msg:       wcf.Message{Id: 3, Sender: "bob", Roomid: "room1"},
			self:      "alice",
			wantGroup: true,
		},
		{
			name: "group message mentioning self",
			msg: wcf.Message{
				Id: 4, Sender: "bob", Roomid: "room1",
				Xml:     "<msgsource><atuserlist>alice,carol</atuserlist></msgsource>",
				Content: "@alice ping",
			},
			self:      "alice",
			wantAt:    true,
			wantGroup: true,
		},
		{
			name: "at-all broadcast is not a mention",
			msg: wcf.Message{
				Id: 5, Sender: "bob", Roomid: "room1",
				Xml:     "<msgsource><atuserlist>alice</atuserlist></msgsource>",
				Content: "@所有人 meeting now",
			},
			self:      "alice",
			wantAt:    false,
			wantGroup: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := forward.NewNormalizer(tc.self, wcf.MentionsUser)
			p := n.Payload(&tc.msg)
			if p.IsAt != tc.wantAt {
				t.Errorf("IsAt = %v, want %v", p.IsAt, tc.wantAt)
			}
			if p.IsSelf != tc.wantSelf {
				t.Errorf("IsSelf = %v, want %v", p.IsSelf, tc.wantSelf)
			}
			if p.IsGroup != tc.wantGroup {
				t.Errorf("IsGroup = %v, want %v", p.IsGroup, tc.wantGroup)
			}
		})
	}
}

func TestNormalizerCopiesFields(t *testing.T) {
	msg := &wcf.Message{
		Id: 7, Ts: 1700000000, Sign: "sig", Type: 1, Xml: "<x/>",
		Sender: "bob", Roomid: "room1", Content: "hello",
		Thumb: "/tmp/t.jpg", Extra: "/tmp/e.dat",
	}
	n := forward.NewNormalizer("alice", wcf.MentionsUser)

	p := n.Payload(msg)
	if p.Id != 7 || p.Ts != 1700000000 || p.Sign != "sig" || p.Type != 1 ||
		p.Xml != "<x/>" || p.Sender != "bob" || p.Roomid != "room1" ||
		p.Content != "hello" || p.Thumb != "/tmp/t.jpg" || p.Extra != "/tmp/e.dat" {
		t.Errorf("payload fields not copied verbatim: %+v", p)
	}

	// Pure function: same input, same output, input untouched.
	if again := n.Payload(msg); again != p {
		t.Errorf("repeated normalization differs: %+v vs %+v", again, p)
	}
	if msg.Sender != "bob" || msg.Content != "hello" {
		t.Errorf("message mutated: %+v", msg)
	}
}
