package oracle

import (
	"encoding/json"
	"regexp"
	"strings"
)

// codeBlockPattern 匹配Markdown代码块（可带语言标签）
var codeBlockPattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// extractJSON 从模型回复中提取JSON
// 优先取 ```json 代码块内容，其次扫描裸露的 {...} 对象
// 模型经常把JSON包在Markdown围栏或解释文字里，直接Unmarshal会失败
func extractJSON(response string) (string, bool) {
	for _, match := range codeBlockPattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(match[2])
		if strings.HasPrefix(content, "{") && isValidJSON(content) {
			return content, true
		}
	}

	start := strings.Index(response, "{")
	if start < 0 {
		return "", false
	}
	if candidate := matchBraces(response[start:]); candidate != "" && isValidJSON(candidate) {
		return candidate, true
	}
	return "", false
}

// matchBraces 按括号配对截取完整JSON对象（处理嵌套与字符串内的括号）
func matchBraces(s string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		if c == '{' {
			depth++
		} else if c == '}' {
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// isValidJSON 判断字符串是否为合法JSON
func isValidJSON(s string) bool {
	var raw json.RawMessage
	return json.Unmarshal([]byte(s), &raw) == nil
}
