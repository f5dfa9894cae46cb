package server

import (
	"context"
	nethttp "net/http"
	"sync"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/gorilla/websocket"

	"github.com/iWorld-y/search_chat/app/search_chat/internal/service"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *nethttp.Request) bool { return true },
}

// WSToken 流式片段
type WSToken struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

// WSEvent 回合结束或出错
type WSEvent struct {
	Event   string `json:"event"`
	Message string `json:"message,omitempty"`
}

// safeWSConn 串行化写操作
type safeWSConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *safeWSConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

type wsHandler struct {
	svc *service.ChatService
	log *log.Helper
}

func newWSHandler(svc *service.ChatService, logger log.Logger) *wsHandler {
	return &wsHandler{svc: svc, log: log.NewHelper(logger)}
}

// ServeHTTP GET /v1/ws?session_id=...
// 客户端发送 {"content"}，服务端依次发送 {"token","index"}，最后发送 {"event":"end"}
func (h *wsHandler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		nethttp.Error(w, "missing session_id", nethttp.StatusBadRequest)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	safeConn := &safeWSConn{conn: conn}

	// 连接的生命周期不受 HTTP 请求超时限制
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	for {
		var msg struct {
			Content string `json:"content"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warnf("websocket read failed session=%s: %v", sessionID, err)
			}
			return
		}

		index := 0
		err := h.svc.StreamMessage(ctx, sessionID, msg.Content, func(token string) error {
			err := safeConn.WriteJSON(WSToken{Token: token, Index: index})
			index++
			return err
		})
		if err != nil {
			if werr := safeConn.WriteJSON(WSEvent{Event: "error", Message: kerrors.FromError(err).Message}); werr != nil {
				return
			}
			if kerrors.IsNotFound(err) {
				return
			}
			continue
		}
		if err := safeConn.WriteJSON(WSEvent{Event: "end"}); err != nil {
			return
		}
	}
}
