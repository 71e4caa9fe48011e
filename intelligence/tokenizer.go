package intelligence

import (
	"strings"

	"github.com/viant/parsly"
)

// Tokenize splits free-form text into case-folded word tokens and quoted
// phrases.  Punctuation is skipped; a quoted phrase is returned as a single
// token with its quotes stripped and inner whitespace normalised.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	cursor := parsly.NewCursor("", []byte(text), 0)
	var tokens []string
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAny(whitespaceToken, phraseToken, wordToken)
		switch matched.Code {
		case whitespaceToken.Code:
			continue
		case phraseToken.Code:
			phrase := strings.Trim(matched.Text(cursor), `"`)
			phrase = strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
			if phrase != "" {
				tokens = append(tokens, phrase)
			}
		case wordToken.Code:
			tokens = append(tokens, strings.ToLower(matched.Text(cursor)))
		default:
			// punctuation or other byte - skip it
			cursor.Pos++
		}
	}
	return tokens
}
