package words

import "strings"

// Limit 保留前 n 个以空白分隔的词，并以单个空格重新拼接
// n <= 0 时返回空串
func Limit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// Collapse 将所有空白串折叠为单个空格，并去掉首尾空白
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Count 统计以空白分隔的词数
func Count(s string) int {
	return len(strings.Fields(s))
}
