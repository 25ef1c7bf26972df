package wcf

import "context"

// Engine operations, one sidecar round trip each. Conn satisfies Client.
var _ Client = (*Conn)(nil)

func (c *Conn) IsLogin(ctx context.Context) (bool, error) {
	var out bool
	err := c.call(ctx, "is_login", nil, &out)
	return out, err
}

func (c *Conn) SelfWxid(ctx context.Context) (string, error) {
	var out string
	err := c.call(ctx, "get_self_wxid", nil, &out)
	return out, err
}

func (c *Conn) UserInfo(ctx context.Context) (*UserInfo, error) {
	var out UserInfo
	if err := c.call(ctx, "get_user_info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Conn) MsgTypes(ctx context.Context) (map[int]string, error) {
	out := make(map[int]string)
	err := c.call(ctx, "get_msg_types", nil, &out)
	return out, err
}

func (c *Conn) Contacts(ctx context.Context) ([]Contact, error) {
	var out []Contact
	err := c.call(ctx, "get_contacts", nil, &out)
	return out, err
}

func (c *Conn) Friends(ctx context.Context) ([]Contact, error) {
	var out []Contact
	err := c.call(ctx, "get_friends", nil, &out)
	return out, err
}

func (c *Conn) DBs(ctx context.Context) ([]string, error) {
	var out []string
	err := c.call(ctx, "get_dbs", nil, &out)
	return out, err
}

func (c *Conn) Tables(ctx context.Context, db string) ([]Table, error) {
	args := struct {
		DB string `json:"db"`
	}{db}
	var out []Table
	err := c.call(ctx, "get_tables", args, &out)
	return out, err
}

func (c *Conn) QuerySQL(ctx context.Context, db, sql string) ([]map[string]any, error) {
	args := struct {
		DB  string `json:"db"`
		SQL string `json:"sql"`
	}{db, sql}
	var out []map[string]any
	err := c.call(ctx, "query_sql", args, &out)
	return out, err
}

func (c *Conn) SendText(ctx context.Context, msg, receiver, aters string) (int, error) {
	args := struct {
		Msg      string `json:"msg"`
		Receiver string `json:"receiver"`
		Aters    string `json:"aters"`
	}{msg, receiver, aters}
	var out int
	err := c.call(ctx, "send_text", args, &out)
	return out, err
}

func (c *Conn) SendImage(ctx context.Context, path, receiver string) (int, error) {
	return c.sendPath(ctx, "send_image", path, receiver)
}

func (c *Conn) SendFile(ctx context.Context, path, receiver string) (int, error) {
	return c.sendPath(ctx, "send_file", path, receiver)
}

func (c *Conn) SendEmotion(ctx context.Context, path, receiver string) (int, error) {
	return c.sendPath(ctx, "send_emotion", path, receiver)
}

func (c *Conn) sendPath(ctx context.Context, op, path, receiver string) (int, error) {
	args := struct {
		Path     string `json:"path"`
		Receiver string `json:"receiver"`
	}{path, receiver}
	var out int
	err := c.call(ctx, op, args, &out)
	return out, err
}

func (c *Conn) SendRichText(ctx context.Context, card RichText, receiver string) (int, error) {
	args := struct {
		RichText
		Receiver string `json:"receiver"`
	}{card, receiver}
	var out int
	err := c.call(ctx, "send_rich_text", args, &out)
	return out, err
}

func (c *Conn) SendPat(ctx context.Context, roomid, wxid string) (int, error) {
	args := struct {
		Roomid string `json:"roomid"`
		Wxid   string `json:"wxid"`
	}{roomid, wxid}
	var out int
	err := c.call(ctx, "send_pat_msg", args, &out)
	return out, err
}

func (c *Conn) AcceptNewFriend(ctx context.Context, v3, v4 string, scene int) (int, error) {
	args := struct {
		V3    string `json:"v3"`
		V4    string `json:"v4"`
		Scene int    `json:"scene"`
	}{v3, v4, scene}
	var out int
	err := c.call(ctx, "accept_new_friend", args, &out)
	return out, err
}

func (c *Conn) ReceiveTransfer(ctx context.Context, wxid, transferid, transactionid string) (int, error) {
	args := struct {
		Wxid          string `json:"wxid"`
		Transferid    string `json:"transferid"`
		Transactionid string `json:"transactionid"`
	}{wxid, transferid, transactionid}
	var out int
	err := c.call(ctx, "receive_transfer", args, &out)
	return out, err
}

func (c *Conn) RefreshPyq(ctx context.Context, id uint64) (int, error) {
	args := struct {
		Id uint64 `json:"id"`
	}{id}
	var out int
	err := c.call(ctx, "refresh_pyq", args, &out)
	return out, err
}

func (c *Conn) ChatroomMembers(ctx context.Context, roomid string) (map[string]string, error) {
	args := struct {
		Roomid string `json:"roomid"`
	}{roomid}
	out := make(map[string]string)
	err := c.call(ctx, "get_chatroom_members", args, &out)
	return out, err
}

func (c *Conn) AliasInChatroom(ctx context.Context, wxid, roomid string) (string, error) {
	args := struct {
		Wxid   string `json:"wxid"`
		Roomid string `json:"roomid"`
	}{wxid, roomid}
	var out string
	err := c.call(ctx, "get_alias_in_chatroom", args, &out)
	return out, err
}

func (c *Conn) AddChatroomMembers(ctx context.Context, roomid, wxids string) (int, error) {
	return c.roomMembers(ctx, "add_chatroom_members", roomid, wxids)
}

func (c *Conn) InviteChatroomMembers(ctx context.Context, roomid, wxids string) (int, error) {
	return c.roomMembers(ctx, "invite_chatroom_members", roomid, wxids)
}

func (c *Conn) DelChatroomMembers(ctx context.Context, roomid, wxids string) (int, error) {
	return c.roomMembers(ctx, "del_chatroom_members", roomid, wxids)
}

func (c *Conn) roomMembers(ctx context.Context, op, roomid, wxids string) (int, error) {
	args := struct {
		Roomid string `json:"roomid"`
		Wxids  string `json:"wxids"`
	}{roomid, wxids}
	var out int
	err := c.call(ctx, op, args, &out)
	return out, err
}

func (c *Conn) DownloadImage(ctx context.Context, id uint64, extra, dir string, timeout int) (string, error) {
	args := struct {
		Id      uint64 `json:"id"`
		Extra   string `json:"extra"`
		Dir     string `json:"dir"`
		Timeout int    `json:"timeout"`
	}{id, extra, dir, timeout}
	var out string
	err := c.call(ctx, "download_image", args, &out)
	return out, err
}

func (c *Conn) SaveAudio(ctx context.Context, id uint64, dir string, timeout int) (string, error) {
	args := struct {
		Id      uint64 `json:"id"`
		Dir     string `json:"dir"`
		Timeout int    `json:"timeout"`
	}{id, dir, timeout}
	var out string
	err := c.call(ctx, "get_audio_msg", args, &out)
	return out, err
}

func (c *Conn) OCRResult(ctx context.Context, extra string, timeout int) (string, error) {
	args := struct {
		Extra   string `json:"extra"`
		Timeout int    `json:"timeout"`
	}{extra, timeout}
	var out string
	err := c.call(ctx, "get_ocr_result", args, &out)
	return out, err
}
