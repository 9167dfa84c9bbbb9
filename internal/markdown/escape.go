package markdown

import "strings"

// Characters reserved by Telegram MarkdownV2, see
// https://core.telegram.org/bots/api#markdownv2-style.
var reserved = func() (set [256]bool) {
	for _, c := range []byte("_*[]()~`>#+-=|{}.!\\") {
		set[c] = true
	}
	return set
}()

// EscapeV2 makes text safe to embed in a MarkdownV2 message.
func EscapeV2(text string) string {
	n := 0
	for i := 0; i < len(text); i++ {
		if reserved[text[i]] {
			n++
		}
	}
	if n == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + n)

	for i := 0; i < len(text); i++ {
		if reserved[text[i]] {
			b.WriteByte('\\')
		}
		b.WriteByte(text[i])
	}

	return b.String()
}

func Bold(text string) string {
	return "*" + EscapeV2(text) + "*"
}
