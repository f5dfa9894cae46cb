package factory

import (
	"fmt"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/search"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/searxng"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/serper"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	if err := cfg.ValidateSearch(); err != nil {
		return nil, err
	}

	switch cfg.Search.Provider {
	case "serper":
		return serper.NewClient(cfg.Search.Serper.APIKey, cfg.Search.Serper.BaseURL), nil
	case "tavily":
		return tavily.NewClient(cfg.Search.Tavily.APIKey), nil
	case "searxng":
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown search provider: %s", config.ErrConfiguration, cfg.Search.Provider)
	}
}
