package fetcher

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/words"
)

// invisibleSelector 不会渲染给用户的元素
const invisibleSelector = "head, script, style, noscript, template, svg, iframe"

// TextExtractor 收集页面上所有可见文本节点
type TextExtractor struct{}

// Extract 实现 Extractor
func (TextExtractor) Extract(body io.Reader, _ *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return ""
	}
	doc.Find(invisibleSelector).Remove()

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return words.Collapse(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// ReadabilityExtractor 只保留正文主体，适合新闻和博客类页面
type ReadabilityExtractor struct{}

// Extract 实现 Extractor
func (ReadabilityExtractor) Extract(body io.Reader, pageURL *url.URL) string {
	article, err := readability.FromReader(body, pageURL)
	if err != nil {
		return ""
	}
	return words.Collapse(article.TextContent)
}
