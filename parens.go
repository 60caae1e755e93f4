package frag

import "regexp"

var (
	placeholderRe = regexp.MustCompile(`^\$[0-9]+$`)
	numberRe      = regexp.MustCompile(`^([0-9]+(\.[0-9]+)?|\.[0-9]+)$`)
	quotedStrRe   = regexp.MustCompile(`^'[^']*'$`)
	quotedPartRe  = regexp.MustCompile(`^"[^"]*"$`)
	barePartRe    = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// isParensSafe is a pure lexical test on already-rendered text: it
// decides whether an expression needs no parentheses when embedded
// inside a larger expression. It recognizes a bare placeholder ($1), a
// bare number (12, 0.5, .5), a single-quoted string with no embedded
// quote, and a dot-separated chain of identifier parts (each either a
// bare [a-zA-Z0-9_]+ run or a "..."-quoted part with no embedded quote).
// Everything else — function calls, operators, casts — is unsafe and
// must be wrapped.
func isParensSafe(text string) bool {
	if placeholderRe.MatchString(text) {
		return true
	}
	if numberRe.MatchString(text) {
		return true
	}
	if quotedStrRe.MatchString(text) {
		return true
	}
	return isDottedIdentifierChain(text)
}

func isDottedIdentifierChain(text string) bool {
	if text == "" {
		return false
	}
	for _, part := range splitRespectingQuotes(text) {
		if !quotedPartRe.MatchString(part) && !barePartRe.MatchString(part) {
			return false
		}
	}
	return true
}

// splitRespectingQuotes splits s on '.' bytes, except a '.' occurring
// inside a "..."-quoted segment does not start a new part. An
// unterminated quote makes the remainder of s a single, necessarily
// invalid, trailing part.
func splitRespectingQuotes(s string) []string {
	var parts []string
	start := 0
	i := 0
	for i < len(s) {
		switch s[i] {
		case '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}
			if j >= len(s) {
				return append(parts, s[start:])
			}
			i = j + 1
		case '.':
			parts = append(parts, s[start:i])
			i++
			start = i
		default:
			i++
		}
	}
	return append(parts, s[start:])
}
