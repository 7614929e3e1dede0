// Package sanitize cleans free text entered by operators before it reaches a wizard.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/promowizard/pkg/domain"
)

var (
	// DefaultMaxInputSize is 4KB.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "PROMOWIZARD_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Input enforces the size limit, validates UTF-8 and strips control characters
// other than newline, tab and carriage return. Oversized input is rejected, not truncated.
func Input(input string) (string, error) {
	limit := maxInputSize()
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// ESC, NUL, BEL and friends would poison logs and terminals.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Line is Input for single-line values such as names: whitespace controls become
// spaces and the result is trimmed.
func Line(input string) (string, error) {
	s, err := Input(input)
	if err != nil {
		return "", err
	}
	s = strings.Map(func(r rune) rune {
		if isSafeControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}

// Stores applies Line to the text fields of every store and drops entries without an id.
func Stores(stores []domain.StoreSelection) ([]domain.StoreSelection, error) {
	out := make([]domain.StoreSelection, 0, len(stores))
	for i, s := range stores {
		var err error
		for _, f := range []*string{&s.StoreID, &s.StoreName, &s.LocationGroup} {
			if *f, err = Line(*f); err != nil {
				return nil, fmt.Errorf("store %d: %w", i, err)
			}
		}
		if s.StoreID != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
