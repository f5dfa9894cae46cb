package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/search"
)

// DefaultBaseURL serper.dev 默认地址
const DefaultBaseURL = "https://google.serper.dev"

// Client serper.dev (Google 搜索) API 客户端
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的 serper 客户端
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

var _ search.Searcher = (*Client)(nil)

// SearchRequest serper 请求体
type SearchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

// SearchResponse serper 响应，只关心自然搜索结果
type SearchResponse struct {
	Organic []OrganicResult `json:"organic"`
}

// OrganicResult 单条自然搜索结果
type OrganicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// Search 执行搜索
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	payload, err := json.Marshal(SearchRequest{Q: req.Query, Num: req.MaxResults})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request failed: %w", search.ErrProvider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request failed: %w", search.ErrProvider, err)
	}
	httpReq.Header.Set("X-API-KEY", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", search.ErrProvider, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body failed: %w", search.ErrProvider, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: serper api error (status %d): %s", search.ErrProvider, res.StatusCode, string(body))
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response failed: %w", search.ErrProvider, err)
	}

	results := make([]search.Result, 0, len(searchResp.Organic))
	for _, r := range searchResp.Organic {
		results = append(results, search.Result{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
		})
	}
	return &search.Response{Results: search.Truncate(results, req.MaxResults)}, nil
}
