package emotion

import (
	"strings"
)

// Label 表示聊天消息附带的情绪标签。
type Label string

const (
	Happy    Label = "happy"
	Sad      Label = "sad"
	Neutral  Label = "neutral"
	Anxious  Label = "anxious"
	Confused Label = "confused"
)

// Labels 按分类优先级返回全部标签，Neutral 排在最后。
func Labels() []Label {
	return []Label{Happy, Sad, Anxious, Confused, Neutral}
}

// rule 将一组关键词映射到对应的情绪标签。
type rule struct {
	label    Label
	keywords []string
}

// rules 按顺序检查，第一个命中的关键词组决定结果。
var rules = []rule{
	{label: Happy, keywords: []string{"happy", "glad", "good", "great", "wonderful"}},
	{label: Sad, keywords: []string{"sad", "depressed", "unhappy", "lonely"}},
	{label: Anxious, keywords: []string{"worry", "anxious", "afraid", "scared"}},
	{label: Confused, keywords: []string{"confused", "don't understand", "what do you mean"}},
}

// Classify 根据关键词推断一段文本的情绪。匹配为大小写不敏感的子串匹配，
// 按 happy、sad、anxious、confused 的顺序检查，均未命中时返回 Neutral。
func Classify(text string) Label {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Neutral
	}

	for _, r := range rules {
		if containsAny(normalized, r.keywords) {
			return r.label
		}
	}
	return Neutral
}

// ParseLabel 将外部传入的字符串解析为 Label，忽略大小写和首尾空白。
func ParseLabel(raw string) (Label, bool) {
	normalized := Label(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case Happy, Sad, Neutral, Anxious, Confused:
		return normalized, true
	default:
		return "", false
	}
}

// Valid 判断标签是否属于已知的五种情绪。
func (l Label) Valid() bool {
	switch l {
	case Happy, Sad, Neutral, Anxious, Confused:
		return true
	default:
		return false
	}
}

func (l Label) String() string {
	return string(l)
}

// containsAny 要求 text 已经转为小写。
func containsAny(text string, keywords []string) bool {
	for _, word := range keywords {
		if word == "" {
			continue
		}
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// ContainsAny 判断文本（转小写后）是否包含任一关键词。
func ContainsAny(text string, keywords ...string) bool {
	return containsAny(strings.ToLower(text), keywords)
}
