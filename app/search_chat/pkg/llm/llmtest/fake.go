// Package llmtest 提供测试用的聊天模型
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// FakeChatModel 返回预设内容并记录每次收到的消息
type FakeChatModel struct {
	// Reply Generate 的返回内容
	Reply string
	// Chunks Stream 依次返回的片段，为空时按空格切分 Reply
	Chunks []string
	// Err 非空时 Generate 和 Stream 都返回该错误
	Err error

	mu    sync.Mutex
	calls [][]*schema.Message
}

var _ model.BaseChatModel = (*FakeChatModel)(nil)

// Generate 实现 model.BaseChatModel
func (f *FakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.record(input)
	if f.Err != nil {
		return nil, f.Err
	}
	return schema.AssistantMessage(f.Reply, nil), nil
}

// Stream 实现 model.BaseChatModel
func (f *FakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.record(input)
	if f.Err != nil {
		return nil, f.Err
	}
	chunks := f.Chunks
	if len(chunks) == 0 {
		chunks = strings.SplitAfter(f.Reply, " ")
	}
	msgs := make([]*schema.Message, 0, len(chunks))
	for _, c := range chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

// Calls 返回所有调用收到的消息
func (f *FakeChatModel) Calls() [][]*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]*schema.Message(nil), f.calls...)
}

// LastCall 返回最近一次调用收到的消息
func (f *FakeChatModel) LastCall() []*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func (f *FakeChatModel) record(input []*schema.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, input)
}
