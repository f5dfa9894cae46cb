package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/search_chat/app/search_chat/internal/service"
	"github.com/iWorld-y/search_chat/app/search_chat/internal/session"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/chat"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/llm/llmtest"
	dm "github.com/iWorld-y/search_chat/app/search_chat/pkg/model"
)

type stubAnswerer struct{}

func (stubAnswerer) Run(context.Context, string) (*dm.Answer, error) {
	return &dm.Answer{
		Text:      "Paris.",
		Citations: []dm.Citation{{Index: 1, Title: "Paris", Link: "https://example.com/paris"}},
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cm := &llmtest.FakeChatModel{Chunks: []string{"Hello", ", ", "world"}}
	svc := service.NewChatService(session.NewStore(), stubAnswerer{}, chat.New(cm), log.DefaultLogger)
	srv := NewHTTPServer(config.ServerConfig{Timeout: "5s"}, svc, log.DefaultLogger)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func startSession(t *testing.T, ts *httptest.Server, mode string) string {
	t.Helper()
	resp, out := postJSON(t, ts.URL+"/v1/sessions", `{"mode":"`+mode+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, mode, out["mode"])
	id, _ := out["session_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHTTP_RAGMessage(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts, "rag")

	resp, out := postJSON(t, ts.URL+"/v1/sessions/"+id+"/messages", `{"content":"capital of France?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Paris.\n\n[1] Paris (https://example.com/paris)", out["reply"])
}

func TestHTTP_EndSession(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts, "plain")

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/sessions/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := postJSON(t, ts.URL+"/v1/sessions/"+id+"/messages", `{"content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SESSION_NOT_FOUND", out["reason"])
}

func TestHTTP_InvalidMode(t *testing.T) {
	ts := newTestServer(t)
	resp, out := postJSON(t, ts.URL+"/v1/sessions", `{"mode":"voice"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_MODE", out["reason"])
}

func TestHTTP_Static(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWS_PlainStreaming(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts, "plain")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws?session_id=" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"content": "hi"}))

	var tokens []WSToken
	for {
		var raw map[string]interface{}
		require.NoError(t, conn.ReadJSON(&raw))
		if raw["event"] == "end" {
			break
		}
		require.Nil(t, raw["event"])
		tokens = append(tokens, WSToken{Token: raw["token"].(string), Index: int(raw["index"].(float64))})
	}
	assert.Equal(t, []WSToken{{"Hello", 0}, {", ", 1}, {"world", 2}}, tokens)
}

func TestWS_UnknownSession(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws?session_id=nope"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"content": "hi"}))
	var ev WSEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "error", ev.Event)
	assert.Equal(t, "session not found", ev.Message)
}
