package service

import (
	"context"
	"errors"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/search_chat/app/search_chat/internal/session"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/chat"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/composer"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/fetcher"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/metrics"
	dm "github.com/iWorld-y/search_chat/app/search_chat/pkg/model"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/search"
)

// FailureNotice 一轮对话失败时展示给用户的通用提示
const FailureNotice = "Sorry, something went wrong while answering your question. Please try again."

// Answerer 检索增强问答
type Answerer interface {
	Run(ctx context.Context, question string) (*dm.Answer, error)
}

// Streamer 普通对话的流式生成
type Streamer interface {
	Stream(ctx context.Context, question string) (*chat.Stream, error)
}

// ChatService 会话与消息处理
type ChatService struct {
	store *session.Store
	rag   Answerer
	plain Streamer
	log   *log.Helper
}

// NewChatService rag 为 nil 时只允许创建 plain 会话
func NewChatService(store *session.Store, rag Answerer, plain Streamer, logger log.Logger) *ChatService {
	return &ChatService{
		store: store,
		rag:   rag,
		plain: plain,
		log:   log.NewHelper(logger),
	}
}

// StartSession 创建会话
func (s *ChatService) StartSession(_ context.Context, mode string) (*session.Session, error) {
	m, err := session.ParseMode(mode)
	if err != nil {
		return nil, kerrors.BadRequest("INVALID_MODE", err.Error())
	}
	if m == session.ModeRAG && s.rag == nil {
		return nil, kerrors.ServiceUnavailable("RAG_UNAVAILABLE", "search chat is not configured")
	}
	sess := s.store.Create(m)
	s.log.Infof("会话已创建 id=%s mode=%s", sess.ID, sess.Mode)
	return sess, nil
}

// EndSession 结束会话
func (s *ChatService) EndSession(_ context.Context, id string) error {
	if !s.store.Delete(id) {
		return kerrors.NotFound("SESSION_NOT_FOUND", "session not found")
	}
	s.log.Infof("会话已结束 id=%s", id)
	return nil
}

// SendMessage 处理一条消息并返回完整回复
func (s *ChatService) SendMessage(ctx context.Context, id, content string) (string, error) {
	var sb strings.Builder
	err := s.StreamMessage(ctx, id, content, func(token string) error {
		sb.WriteString(token)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// StreamMessage 处理一条消息，按顺序把回复片段交给 emit
// plain 会话逐个片段输出，rag 会话整条回复作为一个片段输出
func (s *ChatService) StreamMessage(ctx context.Context, id, content string, emit func(token string) error) error {
	sess, ok := s.store.Get(id)
	if !ok {
		return kerrors.NotFound("SESSION_NOT_FOUND", "session not found")
	}
	if strings.TrimSpace(content) == "" {
		return kerrors.BadRequest("EMPTY_MESSAGE", "message content is empty")
	}
	turn := sess.NextTurn()

	var err error
	switch sess.Mode {
	case session.ModeRAG:
		err = s.answer(ctx, content, emit)
	default:
		err = s.stream(ctx, content, emit)
	}
	metrics.RecordTurn(string(sess.Mode), err)
	if err != nil {
		s.log.Errorf("第 %d 轮对话失败 session=%s: %v", turn, sess.ID, err)
		return turnFailed(err)
	}
	return nil
}

func (s *ChatService) answer(ctx context.Context, question string, emit func(string) error) error {
	answer, err := s.rag.Run(ctx, question)
	if err != nil {
		return err
	}
	return emit(answer.Reply())
}

func (s *ChatService) stream(ctx context.Context, question string, emit func(string) error) error {
	st, err := s.plain.Stream(ctx, question)
	if err != nil {
		return err
	}
	for token := range st.C {
		if err := emit(token); err != nil {
			// 消费者已断开，排空通道让生产者退出
			go func() {
				for range st.C {
				}
			}()
			return err
		}
	}
	return st.Err()
}

// turnFailed 将内部错误映射为带通用提示的 kratos 错误，stage 用于排查
func turnFailed(err error) error {
	code, stage := 500, "internal"
	switch {
	case errors.Is(err, context.Canceled):
		code, stage = 499, "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		code, stage = 504, "timeout"
	case errors.Is(err, config.ErrConfiguration):
		code, stage = 500, "configuration"
	case errors.Is(err, search.ErrProvider):
		code, stage = 502, "search"
	case errors.Is(err, fetcher.ErrFetch):
		code, stage = 502, "fetch"
	case errors.Is(err, composer.ErrGeneration):
		code, stage = 502, "generate"
	}
	return kerrors.New(code, "TURN_FAILED", FailureNotice).
		WithMetadata(map[string]string{"stage": stage}).
		WithCause(err)
}
