package server

import (
	"embed"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWorld-y/search_chat/app/search_chat/internal/service"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
)

//go:embed assets/*
var assets embed.FS

// StartSessionRequest POST /v1/sessions 请求体
type StartSessionRequest struct {
	Mode string `json:"mode"`
}

// SessionReply 会话信息
type SessionReply struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

// MessageRequest 用户消息
type MessageRequest struct {
	Content string `json:"content"`
}

// MessageReply 完整回复
type MessageReply struct {
	Reply string `json:"reply"`
}

// NewHTTPServer 创建 HTTP 服务并注册路由
func NewHTTPServer(c config.ServerConfig, s *service.ChatService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)
	registerChatRoutes(srv, s)

	srv.HandleFunc("/v1/ws", newWSHandler(s, logger).ServeHTTP)
	srv.Handle("/metrics", promhttp.Handler())
	srv.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	srv.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		content, err := assets.ReadFile("assets/index.html")
		if err != nil {
			nethttp.Error(w, err.Error(), nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(content)
	})

	return srv
}

func registerChatRoutes(srv *http.Server, s *service.ChatService) {
	r := srv.Route("/v1")

	r.POST("/sessions", func(ctx http.Context) error {
		var req StartSessionRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		sess, err := s.StartSession(ctx, req.Mode)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, &SessionReply{SessionID: sess.ID, Mode: string(sess.Mode)})
	})

	r.DELETE("/sessions/{id}", func(ctx http.Context) error {
		id := ctx.Vars().Get("id")
		if err := s.EndSession(ctx, id); err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, &SessionReply{SessionID: id})
	})

	r.POST("/sessions/{id}/messages", func(ctx http.Context) error {
		var req MessageRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := s.SendMessage(ctx, ctx.Vars().Get("id"), req.Content)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, &MessageReply{Reply: reply})
	})
}
