package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	apperrors "canvass/internal/errors"
)

// Length limits in runes, checked after normalization.
const (
	minNameRunes = 2
	maxTextRunes = 255
)

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// normalizeEmail maps a missing or blank email to NULL.
func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	v := strings.TrimSpace(*email)
	if v == "" {
		return nil
	}
	return &v
}

// checkText applies the length rules to whichever of first_name, last_name
// and notes are present in fields. Values must already be normalized.
func checkText(fields map[string]string) error {
	for _, name := range []string{"first_name", "last_name", "notes"} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		n := utf8.RuneCountInString(v)
		switch {
		case n == 0:
			return apperrors.NewValidationError(name, "is required")
		case name != "notes" && n < minNameRunes:
			return apperrors.NewValidationError(name, fmt.Sprintf("must be at least %d characters", minNameRunes))
		case n > maxTextRunes:
			return apperrors.NewValidationError(name, fmt.Sprintf("must be at most %d characters", maxTextRunes))
		}
	}
	return nil
}
