package message

import "unicode/utf8"

// Message is one rendered article.
type Message struct {
	Text     string
	ImageURL string
	Link     string
}

// Unit is one outbound payload, carrying one or more messages.
type Unit struct {
	Text     string
	ImageURL string
	Links    []string
}

// Len is the length used for every limit check, in runes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
