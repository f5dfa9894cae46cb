package model

import (
	"fmt"
	"strings"
)

// SearchResult 搜索服务返回的单条结果
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}

// EnrichedResult 抓取正文后的结果，Excerpt 替换了搜索摘要
type EnrichedResult struct {
	Title   string
	Link    string
	Excerpt string
}

// PipelineContext 按搜索排名排列的检索结果，是检索阶段与生成阶段之间的传递形式
type PipelineContext []EnrichedResult

// Serialize 序列化为注入 Prompt 的上下文文本
// 每条结果一段，编号从 1 开始，与引用编号一致
func (c PipelineContext) Serialize() string {
	blocks := make([]string, 0, len(c))
	for i, r := range c {
		blocks = append(blocks, fmt.Sprintf("[%d] %s (%s)\n%s", i+1, r.Title, r.Link, r.Excerpt))
	}
	return strings.Join(blocks, "\n\n")
}

// Citations 按原始顺序生成引用列表
func (c PipelineContext) Citations() []Citation {
	citations := make([]Citation, 0, len(c))
	for i, r := range c {
		citations = append(citations, Citation{Index: i + 1, Title: r.Title, Link: r.Link})
	}
	return citations
}

// Citation 引用条目
type Citation struct {
	Index int
	Title string
	Link  string
}

// String 格式: [i] <title> (<link>)
func (c Citation) String() string {
	return fmt.Sprintf("[%d] %s (%s)", c.Index, c.Title, c.Link)
}

// Answer 一轮对话的回答，不做持久化
type Answer struct {
	Text      string
	Citations []Citation
}

// Reply 拼装最终回复：回答 + 空行 + 引用列表
func (a *Answer) Reply() string {
	if len(a.Citations) == 0 {
		return a.Text
	}
	lines := make([]string, 0, len(a.Citations))
	for _, c := range a.Citations {
		lines = append(lines, c.String())
	}
	return a.Text + "\n\n" + strings.Join(lines, "\n")
}
