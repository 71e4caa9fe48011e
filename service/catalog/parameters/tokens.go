package parameters

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	identifierCode
	colonCode
	openSquareBracketCode
	closeSquareBracketCode
	openParenCode
	closeParenCode
	slashCode
	dataTypeCode
	kindCode
	wireNameCode
)

// Token definitions
var (
	whitespaceToken         = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	identifierToken         = parsly.NewToken(identifierCode, "Identifier", newIdentifierMatcher())
	colonToken              = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
	openSquareBracketToken  = parsly.NewToken(openSquareBracketCode, "[", matcher.NewByte('['))
	closeSquareBracketToken = parsly.NewToken(closeSquareBracketCode, "]", matcher.NewByte(']'))
	openParenToken          = parsly.NewToken(openParenCode, "(", matcher.NewByte('('))
	closeParenToken         = parsly.NewToken(closeParenCode, ")", matcher.NewByte(')'))
	slashToken              = parsly.NewToken(slashCode, "/", matcher.NewByte('/'))
	dataTypeToken           = parsly.NewToken(dataTypeCode, "DataType", newDataTypeMatcher())
	kindToken               = parsly.NewToken(kindCode, "Kind", newKindMatcher())
	wireNameToken           = parsly.NewToken(wireNameCode, "WireName", newWireNameMatcher())
)

// Custom matchers
func newIdentifierMatcher() parsly.Matcher {
	return &identifierMatcher{}
}

func newDataTypeMatcher() parsly.Matcher {
	return &dataTypeMatcher{}
}

func newKindMatcher() parsly.Matcher {
	return &kindMatcher{}
}

func newWireNameMatcher() parsly.Matcher {
	return &wireNameMatcher{}
}

// identifierMatcher matches valid identifier names
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}

	// First character must be a letter or underscore
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}

	matched := 1
	for i := pos + 1; i < size; i++ {
		if isLetter(input[i]) || isDigit(input[i]) || input[i] == '_' {
			matched++
			continue
		}
		break
	}

	return matched
}

// dataTypeMatcher matches a type name, including generics (e.g. map[string]int)
type dataTypeMatcher struct{}

func (m *dataTypeMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	deps := 0
	matched := 0

	// Capture everything until the unbalanced closing square bracket, an
	// opening parenthesis or whitespace
	for i := pos; i < size; i++ {
		if input[i] == '[' {
			deps++
		}
		if deps == 0 && (input[i] == ')' || input[i] == '(' || input[i] == ' ' || input[i] == '\t') {
			break
		}
		if input[i] == ']' {
			if deps == 0 {
				break
			}
			deps--
		}
		matched++
	}
	return matched
}

// kindMatcher matches the kind part (before the slash)
type kindMatcher struct{}

func (m *kindMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == '/' || input[i] == ')' {
			break
		}
		matched++
	}
	return matched
}

// wireNameMatcher matches the wire name part (after the slash)
type wireNameMatcher struct{}

func (m *wireNameMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == ')' {
			break
		}
		matched++
	}
	return matched
}

// Helper functions
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
