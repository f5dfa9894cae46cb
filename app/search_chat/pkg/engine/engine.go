package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/gg/gson"
	"github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/composer"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/fetcher"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/logger"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/metrics"
	dm "github.com/iWorld-y/search_chat/app/search_chat/pkg/model"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/query"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/search"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/search/factory"
)

// Engine 检索增强问答流水线：裁剪问题 -> 搜索 -> 抓取正文 -> 生成回答
// 每一轮都是无状态的，多个会话可以共享同一个 Engine
type Engine struct {
	searcher search.Searcher
	fetcher  *fetcher.Fetcher
	composer *composer.Composer
}

// New 使用已创建的组件组装引擎
func New(searcher search.Searcher, f *fetcher.Fetcher, c *composer.Composer) *Engine {
	return &Engine{searcher: searcher, fetcher: f, composer: c}
}

// NewEngine 根据配置创建引擎实例
func NewEngine(cfg *config.Config, chatModel model.BaseChatModel) (*Engine, error) {
	searcher, err := factory.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}
	f, err := fetcher.New(cfg.Fetch)
	if err != nil {
		return nil, fmt.Errorf("抓取器初始化失败: %w", err)
	}
	return New(searcher, f, composer.New(chatModel)), nil
}

// Retrieve 执行检索阶段，返回按搜索排名排列的上下文
func (e *Engine) Retrieve(ctx context.Context, question string) (dm.PipelineContext, error) {
	q := query.Prepare(question)

	start := time.Now()
	resp, err := e.searcher.Search(ctx, search.NewRequest(q))
	metrics.ObserveStage("search", start)
	if err != nil {
		return nil, err
	}
	results := search.Truncate(resp.Results, search.MaxResults)
	logger.Log.Debugf("搜索 [%s] 返回 %d 条结果: %s", q, len(results), gson.ToString(results))

	start = time.Now()
	pc, err := e.fetcher.FetchAll(ctx, results)
	metrics.ObserveStage("fetch", start)
	if err != nil {
		return nil, err
	}
	return pc, nil
}

// Run 执行一轮完整问答
func (e *Engine) Run(ctx context.Context, question string) (*dm.Answer, error) {
	pc, err := e.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	answer, err := e.composer.Compose(ctx, question, pc)
	metrics.ObserveStage("generate", start)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("问答完成，引用 %d 条结果", len(answer.Citations))
	return answer, nil
}
