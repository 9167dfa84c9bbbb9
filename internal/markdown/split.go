package markdown

import "strings"

// MaxMessageRunes is the Telegram limit for a single text message.
const MaxMessageRunes = 4096

// Split cuts text into parts of at most limit runes. It prefers paragraph
// breaks, then line breaks, then spaces, and cuts mid-word only when a
// single word exceeds the limit.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageRunes
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var parts []string
	runes := []rune(text)

	for len(runes) > limit {
		cut := cutPoint(runes[:limit+1])

		part := strings.TrimSpace(string(runes[:cut]))
		if part != "" {
			parts = append(parts, part)
		}

		runes = []rune(strings.TrimLeft(string(runes[cut:]), " \n"))
	}

	if rest := strings.TrimSpace(string(runes)); rest != "" {
		parts = append(parts, rest)
	}

	return parts
}

func cutPoint(window []rune) int {
	s := string(window)

	for _, sep := range []string{"\n\n", "\n", " "} {
		idx := strings.LastIndex(s, sep)
		if idx <= 0 {
			continue
		}

		if cut := len([]rune(s[:idx])); cut < len(window) {
			return cut
		}
	}

	return len(window) - 1
}
