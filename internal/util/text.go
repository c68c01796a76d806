package util

import (
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// columnAliases maps older export labels onto the current column names.
var columnAliases = map[string]string{
	"favorites":          "likes",
	"promoted_favorites": "promoted_likes",
}

// ColumnKey turns a header label such as "Tweet permalink" or
// "promoted engagement rate" into snake_case.
func ColumnKey(label string) string {
	s := strings.ToLower(NormalizeWhitespace(label))
	s = strings.Trim(nonWord.ReplaceAllString(s, "_"), "_")
	if alias, ok := columnAliases[s]; ok {
		return alias
	}
	return s
}
