package parameters

import (
	bstate "github.com/viant/bindly/state"
	"github.com/viant/parsly"

	"github.com/atomhq/atom/model/state"
)

// Parse parses an operation parameter declaration.  Two forms are accepted:
//
//	name:type                     shorthand, no binding location
//	name[type](kind/wireName)     full form with a bindly location
func Parse(input []byte) (*state.Parameter, error) {
	cursor := parsly.NewCursor("", input, 0)
	parameter := &state.Parameter{Location: &bstate.Location{}}

	// Match the parameter name (identifier)
	matched := cursor.MatchAfterOptional(whitespaceToken, identifierToken)
	if matched.Code != identifierToken.Code {
		return nil, cursor.NewError(identifierToken)
	}
	parameter.Name = matched.Text(cursor)

	// Shorthand form: name:type
	matched = cursor.MatchAny(colonToken, openSquareBracketToken)
	switch matched.Code {
	case colonToken.Code:
		matched = cursor.MatchOne(dataTypeToken)
		if matched.Code != dataTypeToken.Code {
			return nil, cursor.NewError(dataTypeToken)
		}
		parameter.DataType = matched.Text(cursor)
		return parameter, nil
	case openSquareBracketToken.Code:
	default:
		return nil, cursor.NewError(colonToken)
	}

	// Full form: match the type name
	matched = cursor.MatchOne(dataTypeToken)
	if matched.Code != dataTypeToken.Code {
		return nil, cursor.NewError(dataTypeToken)
	}
	parameter.DataType = matched.Text(cursor)

	// Match the closing square bracket
	matched = cursor.MatchOne(closeSquareBracketToken)
	if matched.Code != closeSquareBracketToken.Code {
		return nil, cursor.NewError(closeSquareBracketToken)
	}

	// Match the opening parenthesis for the binding location
	matched = cursor.MatchAfterOptional(whitespaceToken, openParenToken)
	if matched.Code != openParenToken.Code {
		return nil, cursor.NewError(openParenToken)
	}

	// Parse the kind/wireName part
	matched = cursor.MatchAny(kindToken, closeParenToken)
	switch matched.Code {
	case kindToken.Code:
	case closeParenToken.Code:
		return parameter, nil
	default:
		return nil, cursor.NewError(kindToken)
	}
	parameter.Location.Kind = matched.Text(cursor)

	// Check for the separator (/)
	matched = cursor.MatchOne(slashToken)
	if matched.Code != slashToken.Code {
		matched = cursor.MatchOne(closeParenToken)
		if matched.Code != closeParenToken.Code {
			return nil, cursor.NewError(closeParenToken)
		}
		return parameter, nil
	}

	// Match the wire name
	matched = cursor.MatchOne(wireNameToken)
	if matched.Code != wireNameToken.Code {
		return nil, cursor.NewError(wireNameToken)
	}
	parameter.Location.In = matched.Text(cursor)

	// Match the closing parenthesis
	matched = cursor.MatchOne(closeParenToken)
	if matched.Code != closeParenToken.Code {
		return nil, cursor.NewError(closeParenToken)
	}
	return parameter, nil
}
