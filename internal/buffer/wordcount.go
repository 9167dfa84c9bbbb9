package buffer

import (
	"regexp"
	"strings"
)

var articleWordRe = regexp.MustCompile(`[\x{4e00}-\x{9fff}]|[a-zA-Z0-9]+`)

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ArticleWordCount counts every CJK ideograph as one word plus every run of
// latin letters or digits, which is how Chinese article length is judged.
func ArticleWordCount(text string) int {
	return len(articleWordRe.FindAllStringIndex(text, -1))
}
