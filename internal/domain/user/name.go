package user

import (
	"strings"
	"unicode/utf8"
)

// FirstNameAndLastInitial reduces a full name to its first token and the
// initial of its last token, e.g. "Nicholas Chiang" -> "Nicholas C.".
//
// A single-token name is both first and last token, so "Madonna" becomes
// "Madonna M.". A blank name yields "".
func FirstNameAndLastInitial(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return ""
	}
	last := tokens[len(tokens)-1]
	initial, _ := utf8.DecodeRuneInString(last)
	return tokens[0] + " " + string(initial) + "."
}
