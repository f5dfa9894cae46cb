package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/metrics"
)

// Mode 会话模式
type Mode string

const (
	ModeRAG   Mode = "rag"
	ModePlain Mode = "plain"
)

// ParseMode 解析会话模式，空串视为 rag
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRAG:
		return ModeRAG, nil
	case ModePlain:
		return ModePlain, nil
	default:
		return "", fmt.Errorf("unknown mode: %s", s)
	}
}

// Session 一个对话会话，只保存元信息，不保存历史消息
type Session struct {
	ID        string
	Mode      Mode
	CreatedAt time.Time

	mu    sync.Mutex
	turns int
}

// NextTurn 轮次加一并返回新的轮次号
func (s *Session) NextTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns++
	return s.turns
}

// Turns 已进行的轮次
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// Store 进程内会话存储
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore 创建会话存储
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create 创建新会话
func (s *Store) Create(mode Mode) *Session {
	sess := &Session{
		ID:        uuid.New().String(),
		Mode:      mode,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	metrics.ActiveSessions.Inc()
	return sess
}

// Get 获取会话
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete 删除会话，返回会话是否存在
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		metrics.ActiveSessions.Dec()
	}
	return ok
}

// Len 当前会话数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
