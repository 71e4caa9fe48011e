package intelligence

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	phraseCode
	wordCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	phraseToken     = parsly.NewToken(phraseCode, "Phrase", newPhraseMatcher())
	wordToken       = parsly.NewToken(wordCode, "Word", newWordMatcher())
)

func newPhraseMatcher() parsly.Matcher {
	return &phraseMatcher{}
}

func newWordMatcher() parsly.Matcher {
	return &wordMatcher{}
}

// phraseMatcher matches a double-quoted phrase, quotes included.
type phraseMatcher struct{}

func (m *phraseMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size || input[pos] != '"' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		matched++
		if input[i] == '"' {
			return matched
		}
	}
	// unterminated quote - treat the rest of the input as the phrase
	return matched
}

// wordMatcher matches a run of letters or digits; punctuation terminates it.
type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size || !isWordByte(input[pos]) {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		if !isWordByte(input[i]) {
			break
		}
		matched++
	}
	return matched
}

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
