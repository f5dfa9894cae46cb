package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/search_chat/app/search_chat/internal/service"
	"github.com/iWorld-y/search_chat/app/search_chat/internal/session"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/chat"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/engine"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/llm"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/logger"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 服务名称
	Name = "search_chat"
	// Version 服务版本号
	Version string

	flagconf string
	cfg      *config.Config

	id, _ = os.Hostname()
)

var rootCmd = &cobra.Command{
	Use:   "search_chat",
	Short: "Chat with an LLM, optionally grounded in live web search results",
	Long: `search_chat answers questions with a hosted LLM.

In search mode every question is sent to a web search provider, the top results
are fetched and their visible text is injected into the prompt, and the answer
ends with numbered citations. In plain mode the question goes straight to the
model and the reply is streamed back.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env 不存在时忽略
		_ = godotenv.Load()

		var err error
		cfg, err = config.LoadConfig(flagconf)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}
		return nil
	},
}

// Execute 执行根命令
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagconf, "conf", "c", "app/search_chat/configs/config.yaml", "config path, eg: --conf config.yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

// newChatModel 创建生成模型，缺少密钥时启动失败
func newChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	return llm.NewChatModel(ctx, cfg.LLM)
}

// newChatService 组装会话服务；搜索配置不完整时只提供 plain 模式
func newChatService(cm model.BaseChatModel) *service.ChatService {
	var rag service.Answerer
	eng, err := engine.NewEngine(cfg, cm)
	if err != nil {
		logger.Log.Warnf("搜索问答不可用，仅提供普通对话: %v", err)
	} else {
		rag = eng
	}
	return service.NewChatService(session.NewStore(), rag, chat.New(cm), logger.NewKratosLogger())
}
