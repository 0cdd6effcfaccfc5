package utils

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 2000
	MaxLabelNameLength       = 50
	MaxCommentLength         = 1000
	MaxThreadTitleLength     = 100
	MaxMessageLength         = 4000

	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
	DashboardRecentLimit = 10
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// TrimmedLength counts runes, not bytes, after surrounding whitespace is removed.
func TrimmedLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

func IsLengthBetween(s string, min, max int) bool {
	n := TrimmedLength(s)
	return n >= min && n <= max
}

func IsValidHexColor(color string) bool {
	return hexColorPattern.MatchString(color)
}

func IsFutureDate(t, now time.Time) bool {
	return t.After(now)
}

// ClampLimit returns def for non-positive limits and max for limits above it.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
