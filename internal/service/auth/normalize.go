package auth

import (
	"strings"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// NormalizeAnswer canonicalizes a security question answer before hashing
// or comparing. People rarely retype free text answers exactly, so "Rex",
// " rex " and "REX" should all match. The transform is deterministic:
//
//  1. leading and trailing whitespace is removed
//  2. inner whitespace runs collapse to a single space
//  3. the result is Unicode case folded
func NormalizeAnswer(answer string) string {
	return foldCaser.String(strings.Join(strings.Fields(answer), " "))
}
