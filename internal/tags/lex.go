package tags

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken = iota
	comaTerminatorToken
	eqTerminatorToken
	quotedToken
	typeExprToken
)

var (
	whitespaceMatcher     = parsly.NewToken(whitespaceToken, " ", matcher.NewWhiteSpace())
	comaTerminatorMatcher = parsly.NewToken(comaTerminatorToken, "coma", matcher.NewTerminator(',', true))
	eqTerminatorMatcher   = parsly.NewToken(eqTerminatorToken, "=", matcher.NewTerminator('=', true))
	quotedMatcher         = parsly.NewToken(quotedToken, "' .... '", matcher.NewQuote('\'', '\\'))
	typeExprMatcher       = parsly.NewToken(typeExprToken, "type expression", &typeExpr{})
)

// typeExpr matches a type expression up to a coma outside angle brackets.
type typeExpr struct{}

func (t *typeExpr) Match(cursor *parsly.Cursor) (matched int) {
	depth := 0
	for _, c := range cursor.Input[cursor.Pos:] {
		switch c {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth <= 0 {
				return matched
			}
		}
		matched++
	}
	return matched
}
