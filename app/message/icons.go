package message

import (
	"strings"

	"github.com/lysyi3m/rss-relay/app/feed"
)

const DefaultIcon = "📰"

// DefaultIconRules map well-known source names to a symbol.
var DefaultIconRules = []feed.IconRule{
	{Match: "知乎", Symbol: "📌"},
	{Match: "36氪", Symbol: "🔥"},
	{Match: "抽屉", Symbol: "🌟"},
	{Match: "少数派", Symbol: "📱"},
	{Match: "虎嗅", Symbol: "🐯"},
	{Match: "钛媒体", Symbol: "🚀"},
	{Match: "微信", Symbol: "💬"},
	{Match: "Appinn", Symbol: "📲"},
	{Match: "财新", Symbol: "💰"},
	{Match: "V2EX", Symbol: "💻"},
	{Match: "松鼠会", Symbol: "🐿️"},
	{Match: "译言", Symbol: "🌍"},
}

// IconSet is an ordered list of substring rules; the first match wins.
type IconSet struct {
	rules    []feed.IconRule
	fallback string
}

// NewIconSet puts the given rules ahead of the defaults.
func NewIconSet(rules []feed.IconRule) *IconSet {
	all := make([]feed.IconRule, 0, len(rules)+len(DefaultIconRules))
	all = append(all, rules...)
	all = append(all, DefaultIconRules...)
	return &IconSet{rules: all, fallback: DefaultIcon}
}

func (s *IconSet) Lookup(source string) string {
	for _, rule := range s.rules {
		if rule.Match != "" && strings.Contains(source, rule.Match) {
			return rule.Symbol
		}
	}
	return s.fallback
}
