// Package api exposes the engine operations over HTTP. Every route is a
// thin synchronous wrapper: decode parameters, invoke the engine, wrap the
// outcome in the status envelope.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ferrygo/wcfhttp/internal/wcf"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	client wcf.Client
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(client wcf.Client) http.Handler {
	h := &Handler{client: client, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /login", h.isLogin)
	h.mux.HandleFunc("GET /wxid", h.selfWxid)
	h.mux.HandleFunc("GET /user-info", h.userInfo)
	h.mux.HandleFunc("GET /msg-types", h.msgTypes)
	h.mux.HandleFunc("GET /contacts", h.contacts)
	h.mux.HandleFunc("GET /friends", h.friends)
	h.mux.HandleFunc("GET /dbs", h.dbs)
	h.mux.HandleFunc("GET /{db}/tables", h.tables)
	h.mux.HandleFunc("GET /pyq", h.refreshPyq)
	h.mux.HandleFunc("GET /chatroom-member", h.chatroomMembers)
	h.mux.HandleFunc("GET /alias-in-chatroom", h.aliasInChatroom)

	h.mux.HandleFunc("POST /text", h.sendText)
	h.mux.HandleFunc("POST /image", h.sendImage)
	h.mux.HandleFunc("POST /file", h.sendFile)
	h.mux.HandleFunc("POST /emotion", h.sendEmotion)
	h.mux.HandleFunc("POST /rich-text", h.sendRichText)
	h.mux.HandleFunc("POST /pat", h.sendPat)
	h.mux.HandleFunc("POST /sql", h.querySQL)
	h.mux.HandleFunc("POST /ocr", h.ocrResult)
	h.mux.HandleFunc("POST /new-friend", h.acceptNewFriend)
	h.mux.HandleFunc("POST /transfer", h.receiveTransfer)
	h.mux.HandleFunc("POST /save-image", h.downloadImage)
	h.mux.HandleFunc("POST /save-audio", h.saveAudio)
	h.mux.HandleFunc("POST /chatroom-member", h.addChatroomMembers)
	h.mux.HandleFunc("POST /chatroom-member/invite", h.inviteChatroomMembers)
	h.mux.HandleFunc("DELETE /chatroom-member", h.delChatroomMembers)
	h.mux.HandleFunc("POST /msg_cb", h.msgCb)

	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// GET /login — engine login state.
func (h *Handler) isLogin(w http.ResponseWriter, r *http.Request) {
	login, err := h.client.IsLogin(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"login": login}))
}

// GET /wxid — wxid of the logged-in account.
func (h *Handler) selfWxid(w http.ResponseWriter, r *http.Request) {
	wxid, err := h.client.SelfWxid(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if wxid == "" {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"wxid": wxid}))
}

// GET /user-info — profile of the logged-in account.
func (h *Handler) userInfo(w http.ResponseWriter, r *http.Request) {
	ui, err := h.client.UserInfo(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if ui == nil {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"ui": ui}))
}

// GET /msg-types — numeric message-type codes and their names.
func (h *Handler) msgTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.client.MsgTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if len(types) == 0 {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"types": types}))
}

// GET /contacts — full address book.
func (h *Handler) contacts(w http.ResponseWriter, r *http.Request) {
	h.contactList(w, r, "contacts", h.client.Contacts)
}

// GET /friends — friends only (chatrooms, official accounts filtered out).
func (h *Handler) friends(w http.ResponseWriter, r *http.Request) {
	h.contactList(w, r, "friends", h.client.Friends)
}

func (h *Handler) contactList(w http.ResponseWriter, r *http.Request, key string,
	fetch func(ctx context.Context) ([]wcf.Contact, error)) {
	list, err := fetch(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if len(list) == 0 {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{key: list}))
}

// GET /dbs — engine databases.
func (h *Handler) dbs(w http.ResponseWriter, r *http.Request) {
	dbs, err := h.client.DBs(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if len(dbs) == 0 {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"dbs": dbs}))
}

// GET /{db}/tables — tables of one database with creation statements.
func (h *Handler) tables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.client.Tables(r.Context(), r.PathValue("db"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if len(tables) == 0 {
		writeJSON(w, http.StatusOK, fail(-1))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"tables": tables}))
}

// GET /pyq?id= — refresh moments starting at id (0 = newest page). The
// refreshed data arrives through the message callback, not this response.
func (h *Handler) refreshPyq(w http.ResponseWriter, r *http.Request) {
	var id uint64
	if raw := r.URL.Query().Get("id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid id: %s", raw))
			return
		}
		id = v
	}
	ret, err := h.client.RefreshPyq(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opResult(ret, 1))
}

// GET /chatroom-member?roomid= — wxid to display-name map of one room.
func (h *Handler) chatroomMembers(w http.ResponseWriter, r *http.Request) {
	roomid := r.URL.Query().Get("roomid")
	if roomid == "" {
		writeError(w, http.StatusBadRequest, "roomid is required")
		return
	}
	members, err := h.client.ChatroomMembers(r.Context(), roomid)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"members": members}))
}

// GET /alias-in-chatroom?wxid=&roomid= — member display name in one room.
func (h *Handler) aliasInChatroom(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	wxid, roomid := q.Get("wxid"), q.Get("roomid")
	if wxid == "" || roomid == "" {
		writeError(w, http.StatusBadRequest, "wxid and roomid are required")
		return
	}
	alias, err := h.client.AliasInChatroom(r.Context(), wxid, roomid)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"alias": alias}))
}
