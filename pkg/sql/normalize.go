// Package sql classifies generated candidate queries before anything is
// allowed to execute them.
package sql

import (
	"errors"
	"strings"
)

// ErrMultipleStatements indicates the candidate contains more than one SQL
// statement. Only single statements are permitted.
var ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

// NormalizeCandidate trims whitespace, strips a trailing semicolon, and
// rejects input that still contains a semicolon outside string literals.
func NormalizeCandidate(candidate string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", nil
	}

	normalized := stripTrailingSemicolon(candidate)

	// After stripping the trailing semicolon, any remaining semicolon
	// outside a string literal means a second statement.
	if hasSemicolonOutsideStrings(normalized) {
		return "", ErrMultipleStatements
	}

	return normalized, nil
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(candidate string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range candidate {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Handles both backslash escape (\') and SQL standard
			// escape (''): a doubled quote exits and immediately
			// re-enters on the next quote.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes a trailing semicolon and surrounding
// whitespace.
func stripTrailingSemicolon(candidate string) string {
	candidate = strings.TrimRight(candidate, " \t\n\r")
	if strings.HasSuffix(candidate, ";") {
		candidate = strings.TrimSuffix(candidate, ";")
		candidate = strings.TrimRight(candidate, " \t\n\r")
	}
	return candidate
}
