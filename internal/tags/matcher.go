package tags

import (
	"bytes"
	"strings"

	"github.com/viant/parsly"
)

// matchPair matches key[=value] separated by coma; type values may contain
// comas inside angle brackets and any value may be single quoted.
func matchPair(cursor *parsly.Cursor) (string, string) {
	rest := cursor.Input[cursor.Pos:]
	eqIndex := bytes.IndexByte(rest, '=')
	comaIndex := bytes.IndexByte(rest, ',')
	if eqIndex == -1 || (comaIndex != -1 && comaIndex < eqIndex) {
		return matchFlag(cursor), ""
	}
	match := cursor.MatchAfterOptional(whitespaceMatcher, eqTerminatorMatcher)
	if match.Code != eqTerminatorToken {
		return matchFlag(cursor), ""
	}
	key := match.Text(cursor)
	key = strings.TrimSpace(key[:len(key)-1])
	value := ""
	match = cursor.MatchAny(quotedMatcher, typeExprMatcher)
	switch match.Code {
	case quotedToken:
		value = match.Text(cursor)
		value = strings.ReplaceAll(value[1:len(value)-1], `\'`, `'`)
	case typeExprToken:
		value = match.Text(cursor)
	}
	cursor.MatchAny(comaTerminatorMatcher)
	return key, strings.TrimSpace(value)
}

func matchFlag(cursor *parsly.Cursor) string {
	value := ""
	match := cursor.MatchAfterOptional(whitespaceMatcher, comaTerminatorMatcher)
	switch match.Code {
	case comaTerminatorToken:
		value = match.Text(cursor)
		value = value[:len(value)-1] //exclude ,
	default:
		if cursor.Pos < len(cursor.Input) {
			value = string(cursor.Input[cursor.Pos:])
			cursor.Pos = len(cursor.Input)
		}
	}
	return strings.TrimSpace(value)
}
