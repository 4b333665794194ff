// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package shortcode

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// Length is the fixed size of a session code.
const Length = 6

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// Generate returns a new 6-character code drawn uniformly from [A-Z0-9].
// Codes are human-shareable and unique only among live sessions; the
// caller re-checks against existing sessions at creation time.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session code: %w", err)
	}
	code := make([]byte, Length)
	for i, b := range buf {
		code[i] = charset[int(b)%len(charset)]
	}
	return string(code), nil
}

// IsValid reports whether code is exactly six characters from [A-Z0-9].
func IsValid(code string) bool {
	return codePattern.MatchString(code)
}

// Normalize upper-cases and trims a user-entered code. Comparison is
// always against the normalized form.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
