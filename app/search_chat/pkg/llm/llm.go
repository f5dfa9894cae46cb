package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
)

// NewChatModel 创建 OpenAI 兼容的聊天模型（默认指向 Groq）
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GROQ_API_KEY is not set", config.ErrConfiguration)
	}

	mc := &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	}
	if cfg.Timeout > 0 {
		mc.Timeout = time.Duration(cfg.Timeout) * time.Second
	}

	cm, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return cm, nil
}
