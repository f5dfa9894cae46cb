package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/composer"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/llm/llmtest"
)

func TestChat_StreamInOrder(t *testing.T) {
	fake := &llmtest.FakeChatModel{Chunks: []string{"Hello", "", ", ", "world", "!"}}
	s, err := New(fake).Stream(context.Background(), "hi")
	require.NoError(t, err)

	var got []string
	for token := range s.C {
		got = append(got, token)
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []string{"Hello", ", ", "world", "!"}, got)

	msgs := fake.LastCall()
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, SystemPrompt, msgs[0].Content)
	assert.Equal(t, "hi", msgs[1].Content)
}

func TestChat_Reply(t *testing.T) {
	fake := &llmtest.FakeChatModel{Reply: "Go is a statically typed language."}
	got, err := New(fake).Reply(context.Background(), "what is go")
	require.NoError(t, err)
	assert.Equal(t, "Go is a statically typed language.", got)
}

func TestChat_StreamError(t *testing.T) {
	_, err := New(&llmtest.FakeChatModel{Err: errors.New("503")}).Stream(context.Background(), "hi")
	assert.ErrorIs(t, err, composer.ErrGeneration)
}

func TestChat_StreamCancel(t *testing.T) {
	fake := &llmtest.FakeChatModel{Chunks: []string{"a", "b", "c", "d"}}
	ctx, cancel := context.WithCancel(context.Background())
	s, err := New(fake).Stream(ctx, "hi")
	require.NoError(t, err)

	first, ok := <-s.C
	require.True(t, ok)
	assert.Equal(t, "a", first)
	cancel()

	// 没有消费者时生产者只能观察到取消
	assert.ErrorIs(t, s.Err(), context.Canceled)
	_, ok = <-s.C
	assert.False(t, ok)
}
