// Package wcf defines the boundary to the WeChatFerry automation engine:
// the operations the HTTP gateway invokes and the message source the
// forwarding pipeline drains. The engine itself runs as a separate sidecar
// process; this package only speaks to it.
package wcf

import (
	"context"
	"errors"
	"time"
)

// ErrNoMessage is returned by Source.Next when no message arrived within
// the poll timeout. It is the normal idle signal, not a failure.
var ErrNoMessage = errors.New("wcf: no message available")

// UserInfo describes the account the engine is logged in as.
type UserInfo struct {
	Wxid   string `json:"wxid"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Home   string `json:"home"`
}

// Contact is one address-book entry.
type Contact struct {
	Wxid     string `json:"wxid"`
	Code     string `json:"code"`
	Remark   string `json:"remark"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Province string `json:"province"`
	City     string `json:"city"`
	Gender   string `json:"gender"`
}

// Table is one table of an engine database, with its creation statement.
type Table struct {
	Name string `json:"name"`
	SQL  string `json:"sql"`
}

// RichText holds the fields of a link-card message.
type RichText struct {
	Name     string `json:"name"`
	Account  string `json:"account"`
	Title    string `json:"title"`
	Digest   string `json:"digest"`
	Url      string `json:"url"`
	Thumburl string `json:"thumburl"`
}

// Client is the set of engine operations the gateway exposes over HTTP.
// Send and room-management calls return the engine's own status code:
// by engine convention 0 means success for send operations and 1 for
// room/friend operations.
type Client interface {
	IsLogin(ctx context.Context) (bool, error)
	SelfWxid(ctx context.Context) (string, error)
	UserInfo(ctx context.Context) (*UserInfo, error)
	MsgTypes(ctx context.Context) (map[int]string, error)
	Contacts(ctx context.Context) ([]Contact, error)
	Friends(ctx context.Context) ([]Contact, error)
	DBs(ctx context.Context) ([]string, error)
	Tables(ctx context.Context, db string) ([]Table, error)
	QuerySQL(ctx context.Context, db, sql string) ([]map[string]any, error)

	SendText(ctx context.Context, msg, receiver, aters string) (int, error)
	SendImage(ctx context.Context, path, receiver string) (int, error)
	SendFile(ctx context.Context, path, receiver string) (int, error)
	SendEmotion(ctx context.Context, path, receiver string) (int, error)
	SendRichText(ctx context.Context, card RichText, receiver string) (int, error)
	SendPat(ctx context.Context, roomid, wxid string) (int, error)

	AcceptNewFriend(ctx context.Context, v3, v4 string, scene int) (int, error)
	ReceiveTransfer(ctx context.Context, wxid, transferid, transactionid string) (int, error)
	RefreshPyq(ctx context.Context, id uint64) (int, error)

	ChatroomMembers(ctx context.Context, roomid string) (map[string]string, error)
	AliasInChatroom(ctx context.Context, wxid, roomid string) (string, error)
	AddChatroomMembers(ctx context.Context, roomid, wxids string) (int, error)
	InviteChatroomMembers(ctx context.Context, roomid, wxids string) (int, error)
	DelChatroomMembers(ctx context.Context, roomid, wxids string) (int, error)

	DownloadImage(ctx context.Context, id uint64, extra, dir string, timeout int) (string, error)
	SaveAudio(ctx context.Context, id uint64, dir string, timeout int) (string, error)
	OCRResult(ctx context.Context, extra string, timeout int) (string, error)
}

// Source is the queue-like provider of inbound messages. The forwarder is
// its exclusive consumer.
type Source interface {
	// Receiving reports whether the engine is still pushing messages.
	Receiving() bool
	// Next returns the next queued message, waiting up to timeout.
	// It returns ErrNoMessage when the timeout expires with the queue empty.
	Next(timeout time.Duration) (*Message, error)
	// EnableReceiving activates message delivery. Called once at startup;
	// pyq additionally subscribes to moments updates.
	EnableReceiving(pyq bool) error
}
