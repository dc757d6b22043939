package typ

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken = iota + 10
	nullableToken
	unionToken
	intersectionToken
	argsOpenToken
	argsCloseToken
	comaToken
	groupOpenToken
	groupCloseToken
	identityToken
)

var (
	whitespaceMatcher   = parsly.NewToken(whitespaceToken, " ", matcher.NewWhiteSpace())
	nullableMatcher     = parsly.NewToken(nullableToken, "?", matcher.NewByte('?'))
	unionMatcher        = parsly.NewToken(unionToken, "|", matcher.NewByte('|'))
	intersectionMatcher = parsly.NewToken(intersectionToken, "&", matcher.NewByte('&'))
	argsOpenMatcher     = parsly.NewToken(argsOpenToken, "<", matcher.NewByte('<'))
	argsCloseMatcher    = parsly.NewToken(argsCloseToken, ">", matcher.NewByte('>'))
	comaMatcher         = parsly.NewToken(comaToken, ",", matcher.NewByte(','))
	groupOpenMatcher    = parsly.NewToken(groupOpenToken, "(", matcher.NewByte('('))
	groupCloseMatcher   = parsly.NewToken(groupCloseToken, ")", matcher.NewByte(')'))
	identityMatcher     = parsly.NewToken(identityToken, "identity", &identity{})
)

// identity matches type names, including package qualified ones.
type identity struct{}

func (i *identity) Match(cursor *parsly.Cursor) (matched int) {
	for _, c := range cursor.Input[cursor.Pos:] {
		if !isIdentityByte(c) {
			break
		}
		matched++
	}
	return matched
}

func isIdentityByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.', c == '\\', c == '/':
		return true
	}
	return c >= 0x80
}
