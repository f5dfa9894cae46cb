package search

import (
	"context"
	"errors"
)

// MaxResults 每轮检索使用的结果数量，全局固定
const MaxResults = 3

// ErrProvider 搜索服务调用失败：鉴权、网络、配额或响应无法解析
var ErrProvider = errors.New("search provider error")

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query      string
	MaxResults int
}

// NewRequest 使用全局结果数量构造请求
func NewRequest(query string) *Request {
	return &Request{Query: query, MaxResults: MaxResults}
}

// Response 通用搜索响应，Results 保持搜索服务的排名顺序
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Truncate 截取前 n 条结果，n <= 0 时不截取
func Truncate(results []Result, n int) []Result {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
