package query

import "github.com/iWorld-y/search_chat/app/search_chat/pkg/words"

// MaxWords 搜索查询允许的最大词数，超长查询会被搜索服务拒绝或截断
const MaxWords = 50

// Prepare 将用户问题裁剪为搜索查询
// 只保留前 MaxWords 个词，不做大小写或标点处理
func Prepare(question string) string {
	return words.Limit(question, MaxWords)
}
