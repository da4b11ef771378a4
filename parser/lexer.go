package parser

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken int = iota
	atToken
	dotToken
	commaToken
	colonToken
	minusToken
	lparenToken
	rparenToken
	lbraceToken
	rbraceToken
	stringToken
	numberToken
	identToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "whitespace", matcher.NewWhiteSpace())
var atMatcher = parsly.NewToken(atToken, `"@"`, matcher.NewByte('@'))
var dotMatcher = parsly.NewToken(dotToken, `"."`, matcher.NewByte('.'))
var commaMatcher = parsly.NewToken(commaToken, `","`, matcher.NewByte(','))
var colonMatcher = parsly.NewToken(colonToken, `":"`, matcher.NewByte(':'))
var minusMatcher = parsly.NewToken(minusToken, `"-"`, matcher.NewByte('-'))
var lparenMatcher = parsly.NewToken(lparenToken, `"("`, matcher.NewByte('('))
var rparenMatcher = parsly.NewToken(rparenToken, `")"`, matcher.NewByte(')'))
var lbraceMatcher = parsly.NewToken(lbraceToken, `"{"`, matcher.NewByte('{'))
var rbraceMatcher = parsly.NewToken(rbraceToken, `"}"`, matcher.NewByte('}'))
var stringMatcher = parsly.NewToken(stringToken, "string literal", matcher.NewBlock('"', '"', '\\'))
var numberMatcher = parsly.NewToken(numberToken, "number", matcher.NewNumber())
var identMatcher = parsly.NewToken(identToken, "identifier", &identifierMatch{})

type identifierMatch struct{}

func (i *identifierMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize {
		return 0
	}
	if !isIdentifierStart(cursor.Input[cursor.Pos]) {
		return 0
	}
	pos := cursor.Pos + 1
	for pos < cursor.InputSize && isIdentifierPart(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

func isIdentifierStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentifierPart(b byte) bool {
	return isIdentifierStart(b) || (b >= '0' && b <= '9')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
