package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/composer"
)

// SystemPrompt 普通对话的系统提示
const SystemPrompt = "You are a helpful assistant."

// Chat 普通对话：不检索，直接把用户消息交给模型并流式返回
type Chat struct {
	chatModel model.BaseChatModel
	template  prompt.ChatTemplate
}

// New 创建 Chat
func New(chatModel model.BaseChatModel) *Chat {
	return &Chat{
		chatModel: chatModel,
		template: prompt.FromMessages(schema.FString,
			schema.SystemMessage(SystemPrompt),
			schema.UserMessage("{question}"),
		),
	}
}

// Stream 一次性、有限、不可重放的回复片段序列
// C 按生成顺序输出片段，结束（包括出错和取消）时关闭
type Stream struct {
	C <-chan string

	done chan struct{}
	err  error
}

// Err 返回流的终止错误，需在 C 关闭后调用
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// Stream 发起流式生成，生产者在独立 goroutine 中运行，ctx 取消后停止并关闭 C
func (c *Chat) Stream(ctx context.Context, question string) (*Stream, error) {
	msgs, err := c.template.Format(ctx, map[string]any{"question": question})
	if err != nil {
		return nil, fmt.Errorf("%w: format prompt failed: %w", composer.ErrGeneration, err)
	}

	reader, err := c.chatModel.Stream(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", composer.ErrGeneration, err)
	}

	ch := make(chan string)
	s := &Stream{C: ch, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		defer close(ch)
		defer reader.Close()

		for {
			chunk, err := reader.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				s.err = fmt.Errorf("%w: %w", composer.ErrGeneration, err)
				return
			}
			if chunk.Content == "" {
				continue
			}
			select {
			case ch <- chunk.Content:
			case <-ctx.Done():
				s.err = ctx.Err()
				return
			}
		}
	}()
	return s, nil
}

// Reply 收集完整回复
func (c *Chat) Reply(ctx context.Context, question string) (string, error) {
	s, err := c.Stream(ctx, question)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for token := range s.C {
		sb.WriteString(token)
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
