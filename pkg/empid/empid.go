// Package empid derives sequential employee identifiers such as AMEMP004.
package empid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPrefix = "AMEMP"
	DefaultWidth  = 3
)

var (
	ErrMalformedID = errors.New("malformed employee id")
	// ErrIDSpaceExhausted is returned instead of widening the suffix: ids are
	// compared as strings, so AMEMP1000 would sort below AMEMP999.
	ErrIDSpaceExhausted = errors.New("employee id space exhausted")
)

type Generator struct {
	Prefix string
	Width  int
}

func New(prefix string, width int) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return &Generator{Prefix: prefix, Width: width}
}

// Seed is the id handed out when no employee exists yet.
func (g *Generator) Seed() string {
	return g.Prefix + strings.Repeat("0", g.Width)
}

// Next returns the id following last. An empty last means the table is empty.
func (g *Generator) Next(last string) (string, error) {
	if last == "" {
		return g.Seed(), nil
	}

	suffix, ok := strings.CutPrefix(last, g.Prefix)
	if !ok || suffix == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedID, last)
	}
	n, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedID, last)
	}

	next := strconv.FormatUint(n+1, 10)
	if len(next) > g.Width {
		return "", fmt.Errorf("%w: %q is the last id of width %d", ErrIDSpaceExhausted, last, g.Width)
	}
	return g.Prefix + strings.Repeat("0", g.Width-len(next)) + next, nil
}

// Valid reports whether id has this generator's prefix and width.
func (g *Generator) Valid(id string) bool {
	suffix, ok := strings.CutPrefix(id, g.Prefix)
	if !ok || len(suffix) != g.Width {
		return false
	}
	_, err := strconv.ParseUint(suffix, 10, 64)
	return err == nil
}
