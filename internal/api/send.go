package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ferrygo/wcfhttp/internal/forward"
	"github.com/ferrygo/wcfhttp/internal/wcf"
)

// decode reads the JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// opResult wraps an engine return code. The engine signals success with 0
// for send operations and 1 for room, friend and moments operations; the
// raw code is passed through either way.
func opResult(ret, success int) result {
	if ret == success {
		return result{Status: ret, Message: "ok"}
	}
	return result{Status: ret, Message: "failed"}
}

// POST /text — send a text message; aters lists wxids to @-mention,
// "notify@all" mentions the whole room.
func (h *Handler) sendText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Msg      string `json:"msg"`
		Receiver string `json:"receiver"`
		Aters    string `json:"aters"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Receiver == "" {
		req.Receiver = "filehelper"
	}
	ret, err := h.client.SendText(r.Context(), req.Msg, req.Receiver, req.Aters)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opResult(ret, 0))
}

// POST /image, /file, /emotion — send a local file by path.
func (h *Handler) sendImage(w http.ResponseWriter, r *http.Request) {
	h.sendPath(w, r, h.client.SendImage)
}

func (h *Handler) sendFile(w http.ResponseWriter, r *http.Request) {
	h.sendPath(w, r, h.client.SendFile)
}

func (h *Handler) sendEmotion(w http.ResponseWriter, r *http.Request) {
	h.sendPath(w, r, h.client.SendEmotion)
}

func (h *Handler) sendPath(w http.ResponseWriter, r *http.Request,
	send func(ctx context.Context, path, receiver string) (int, error)) {
	var req struct {
		Path     string `json:"path"`
		Receiver string `json:"receiver"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if req.Receiver == "" {
		req.Receiver = "filehelper"
	}
	ret, err := send(r.Context(), req.Path, req.Receiver)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opResult(ret, 0))
}

// POST /rich-text — send a link card.
func (h *Handler) sendRichText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		wcf.RichText
		Receiver string `json:"receiver"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Receiver == "" {
		req.Receiver = "filehelper"
	}
	ret, err := h.client.SendRichText(r.Context(), req.RichText, req.Receiver)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opResult(ret, 0))
}

// POST /pat — pat a room member.
func (h *Handler) sendPat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Roomid string `json:"roomid"`
		Wxid   string `json:"wxid"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Roomid == "" || req.Wxid == "" {
		writeError(w, http.StatusBadRequest, "roomid and wxid are required")
		return
	}
	ret, err := h.client.SendPat(r.Context(), req.Roomid, req.Wxid)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opResult(ret, 1))
}

// POST /sql — run a query against an engine database. Blob column values
// are base64-encoded so the result survives JSON serialization; mind
// pagination on large tables.
func (h *Handler) querySQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DB  string `json:"db"`
		SQL string `json:"sql"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DB == "" || req.SQL == "" {
		writeError(w, http.StatusBadRequest, "db and sql are required")
		return
	}
	rows, err := h.client.QuerySQL(r.Context(), req.DB, req.SQL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	for _, row := range rows {
		for k, v := range row {
			if b, isBlob := v.([]byte); isBlob {
				row[k] = base64.StdEncoding.EncodeToString(b)
			}
		}
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"bs64": rows}))
}

// POST /ocr — text recognition on a received image.
func (h *Handler) ocrResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Extra   string `json:"extra"`
		Timeout int    `json:"timeout"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Timeout == 0 {
		req.Timeout = 30
	}
	text, err := h.client.OCRResult(r.Context(), req.Extra, req.Timeout)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if text == "" {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"ocr": text}))
}

// POST /new-friend — accept a friend request by its v3/v4 tokens.
func (h *Handler) acceptNewFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		V3    string `json:"v3"`
		V4    string `json:"v4"`
		Scene int    `json:"scene"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Scene == 0 {
		req.Scene = 30
	}
	ret, err := h.client.AcceptNewFriend(r.Context(), req.V3, req.V4, req.Scene)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opResult(ret, 1))
}

// POST /transfer — accept an incoming transfer.
func (h *Handler) receiveTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wxid          string `json:"wxid"`
		Transferid    string `json:"transferid"`
		Transactionid string `json:"transactionid"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ret, err := h.client.ReceiveTransfer(r.Context(), req.Wxid, req.Transferid, req.Transactionid)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opResult(ret, 1))
}

// POST /save-image — download the image of a received message into dir.
func (h *Handler) downloadImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Id      uint64 `json:"id"`
		Extra   string `json:"extra"`
		Dir     string `json:"dir"`
		Timeout int    `json:"timeout"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Timeout == 0 {
		req.Timeout = 30
	}
	path, err := h.client.DownloadImage(r.Context(), req.Id, req.Extra, req.Dir, req.Timeout)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if path == "" {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"path": path}))
}

// POST /save-audio — save the voice clip of a received message into dir.
func (h *Handler) saveAudio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Id      uint64 `json:"id"`
		Dir     string `json:"dir"`
		Timeout int    `json:"timeout"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Timeout == 0 {
		req.Timeout = 30
	}
	path, err := h.client.SaveAudio(r.Context(), req.Id, req.Dir, req.Timeout)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if path == "" {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"path": path}))
}

// POST, POST /invite, DELETE on /chatroom-member — room membership ops.
func (h *Handler) addChatroomMembers(w http.ResponseWriter, r *http.Request) {
	h.roomMembers(w, r, h.client.AddChatroomMembers)
}

func (h *Handler) inviteChatroomMembers(w http.ResponseWriter, r *http.Request) {
	h.roomMembers(w, r, h.client.InviteChatroomMembers)
}

func (h *Handler) delChatroomMembers(w http.ResponseWriter, r *http.Request) {
	h.roomMembers(w, r, h.client.DelChatroomMembers)
}

func (h *Handler) roomMembers(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, roomid, wxids string) (int, error)) {
	var req struct {
		Roomid string `json:"roomid"`
		Wxids  string `json:"wxids"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Roomid == "" || req.Wxids == "" {
		writeError(w, http.StatusBadRequest, "roomid and wxids are required")
		return
	}
	ret, err := op(r.Context(), req.Roomid, req.Wxids)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opResult(ret, 1))
}

// POST /msg_cb — reference callback endpoint: logs the forwarded payload
// and acknowledges. Point forward.callback_url here to see the pipeline
// end to end.
func (h *Handler) msgCb(w http.ResponseWriter, r *http.Request) {
	var p forward.Payload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Info("callback received message",
		"id", p.Id, "type", p.Type, "sender", p.Sender,
		"roomid", p.Roomid, "content", p.Content)
	writeJSON(w, http.StatusOK, ok(nil))
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 until the engine reports a logged-in session.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	login, err := h.client.IsLogin(r.Context())
	if err != nil || !login {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
			"login":  login,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "login": true})
}
