package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEscapeV2(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"No special characters", "Buffer leer", "Buffer leer"},
		{"Count with period", "2 articles.", `2 articles\.`},
		{"Brackets and dash", "[draft] - v1", `\[draft\] \- v1`},
		{"Backslash", `a\b`, `a\\b`},
		{"Chinese stays intact", "文章（一）!", "文章（一）\\!"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := EscapeV2(test.input); got != test.want {
				t.Fatalf("expected %q, got %q", test.want, got)
			}
		})
	}
}

func TestBold(t *testing.T) {
	if got := Bold("Buffer (2)"); got != `*Buffer \(2\)*` {
		t.Fatalf("unexpected bold text: %q", got)
	}
}

func TestSplitShortText(t *testing.T) {
	parts := Split("  kurzer Text  ", 100)

	if len(parts) != 1 || parts[0] != "kurzer Text" {
		t.Fatalf("unexpected parts: %q", parts)
	}
}

func TestSplitEmpty(t *testing.T) {
	if parts := Split(" \n ", 100); len(parts) != 0 {
		t.Fatalf("expected no parts, got %q", parts)
	}
}

func TestSplitPrefersParagraphs(t *testing.T) {
	first := strings.Repeat("a", 30)
	second := strings.Repeat("b", 30)

	parts := Split(first+"\n\n"+second, 40)

	if len(parts) != 2 || parts[0] != first || parts[1] != second {
		t.Fatalf("unexpected parts: %q", parts)
	}
}

func TestSplitFallsBackToSpaces(t *testing.T) {
	parts := Split("eins zwei drei vier fünf", 10)

	for _, part := range parts {
		if utf8.RuneCountInString(part) > 10 {
			t.Fatalf("part exceeds limit: %q", part)
		}
	}
	if strings.Join(parts, " ") != "eins zwei drei vier fünf" {
		t.Fatalf("words lost: %q", parts)
	}
}

func TestSplitLongWordAndRunes(t *testing.T) {
	text := strings.Repeat("汉", 25)

	parts := Split(text, 10)

	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %q", len(parts), parts)
	}
	if strings.Join(parts, "") != text {
		t.Fatalf("runes lost: %q", parts)
	}
	for _, part := range parts {
		if utf8.RuneCountInString(part) > 10 {
			t.Fatalf("part exceeds limit: %q", part)
		}
	}
}
