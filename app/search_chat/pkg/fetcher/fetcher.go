package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/config"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/logger"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/metrics"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/model"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/search"
	"github.com/iWorld-y/search_chat/app/search_chat/pkg/words"
)

// MaxExcerptWords 每个页面保留的最大词数
const MaxExcerptWords = 1000

// ErrFetch 页面抓取失败：非 2xx、网络错误或读取正文失败
var ErrFetch = errors.New("page fetch error")

// Extractor 从 HTML 中提取可见文本，解析失败时返回空串
type Extractor interface {
	Extract(body io.Reader, pageURL *url.URL) string
}

// Fetcher 顺序抓取搜索结果页面并提取正文
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	extractor    Extractor
	strict       bool
}

// New 根据配置创建 Fetcher
func New(cfg config.FetchConfig) (*Fetcher, error) {
	var extractor Extractor
	switch cfg.Extractor {
	case "", "text":
		extractor = TextExtractor{}
	case "readability":
		extractor = ReadabilityExtractor{}
	default:
		return nil, fmt.Errorf("%w: unknown extractor: %s", config.ErrConfiguration, cfg.Extractor)
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultFetchTimeout * time.Second
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.DefaultMaxBodyBytes
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &Fetcher{
		// 不设置 Jar，页面之间不携带 cookie
		client:       &http.Client{Timeout: timeout},
		userAgent:    userAgent,
		maxBodyBytes: maxBody,
		extractor:    extractor,
		strict:       cfg.Strict,
	}, nil
}

// Fetch 抓取单个页面，返回前 MaxExcerptWords 个词
func (f *Fetcher) Fetch(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q: %w", ErrFetch, link, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request failed: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	res, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request %s failed: %w", ErrFetch, link, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned status %d", ErrFetch, link, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body of %s failed: %w", ErrFetch, link, err)
	}

	text := f.extractor.Extract(bytes.NewReader(body), pageURL)
	return words.Limit(text, MaxExcerptWords), nil
}

// FetchAll 按搜索排名依次抓取，结果数量与输入一致
// 非 strict 模式下抓取失败的结果保留标题和链接，正文为空
func (f *Fetcher) FetchAll(ctx context.Context, results []search.Result) (model.PipelineContext, error) {
	enriched := make(model.PipelineContext, 0, len(results))
	for i, r := range results {
		excerpt, err := f.Fetch(ctx, r.URL)
		if err != nil {
			if f.strict || ctx.Err() != nil {
				return nil, err
			}
			metrics.FetchFailures.Inc()
			logger.Log.Warnf("抓取第 %d 条结果失败，使用空正文: %v", i+1, err)
			excerpt = ""
		}
		enriched = append(enriched, model.EnrichedResult{
			Title:   r.Title,
			Link:    r.URL,
			Excerpt: excerpt,
		})
	}
	return enriched, nil
}
