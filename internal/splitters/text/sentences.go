package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations that do not end a sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true,
	"prof": true, "sr": true, "jr": true,
	"vs": true, "etc": true, "inc": true, "ltd": true,
	"e.g": true, "i.e": true, "viz": true, "al": true,
	"approx": true, "dept": true, "est": true,
	"fig": true, "no": true, "vol": true,
}

// sentenceBoundaries returns byte offsets where a new sentence starts.
// A boundary follows '.', '!' or '?' when the next rune is a newline, or
// a space followed by an upper-case letter. Decimal points and common
// abbreviations are skipped. CJK full stops always end a sentence.
func sentenceBoundaries(text string) []int {
	var out []int
	for i, r := range text {
		next := i + utf8.RuneLen(r)
		switch r {
		case '。', '！', '？':
			if next < len(text) {
				out = append(out, next)
			}
			continue
		case '.', '!', '?':
		default:
			continue
		}

		if r == '.' && (isDecimalDot(text, i) || isAbbreviation(text, i)) {
			continue
		}
		if next >= len(text) {
			continue
		}
		switch text[next] {
		case '\n':
			out = append(out, next)
		case ' ':
			after, _ := utf8.DecodeRuneInString(text[next+1:])
			if unicode.IsUpper(after) {
				out = append(out, next+1)
			}
		}
	}
	return out
}

func isDecimalDot(text string, pos int) bool {
	if pos == 0 || pos+1 >= len(text) {
		return false
	}
	prev, next := text[pos-1], text[pos+1]
	return prev >= '0' && prev <= '9' && next >= '0' && next <= '9'
}

func isAbbreviation(text string, pos int) bool {
	start := pos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) && r != '.' {
			break
		}
		start -= size
	}
	return abbreviations[strings.ToLower(text[start:pos])]
}

// splitWords packs words into pieces of at most size characters.
// Words longer than size are cut.
func splitWords(text string, size int) []string {
	var out []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			out = append(out, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordLen := runeLen(word)
		if wordLen > size {
			flush()
			runes := []rune(word)
			for i := 0; i < len(runes); i += size {
				end := min(i+size, len(runes))
				out = append(out, string(runes[i:end]))
			}
			continue
		}
		if currentLen > 0 && currentLen+1+wordLen > size {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	flush()
	return out
}
