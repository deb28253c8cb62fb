// Package selector guards externally supplied CSS selectors before they reach
// a DOM query.
package selector

import "regexp"

// MaxLength is the exclusive upper bound on selector length
const MaxLength = 500

// safePattern allows word characters, hyphen, brackets, quotes, '.', ':', '#',
// space, combinators, parentheses and '='.
var safePattern = regexp.MustCompile(`^[\w\-\[\]="'.:# >+~()]+$`)

// IsValid reports whether selector may be used in a DOM query
func IsValid(selector string) bool {
	return len(selector) < MaxLength && safePattern.MatchString(selector)
}
