// internal/sets/sets.go
//
// Set-code allow-list for the random card draw.
//
// Responsibilities:
//   - Load set codes from an environment-provided file and/or an inline list.
//   - Normalize (trim, lowercase), validate and de-duplicate them.
//
// File format:
//   One set code per line. Blank lines and lines starting with '#' are skipped.
//
//   # Alpha and Beta only
//   lea
//   leb
//
// Constraints:
//   • Codes are 2–6 characters of a–z or 0–9 (Scryfall set codes).
//   • Invalid codes are rejected with an error rather than silently dropped,
//     since a typo would otherwise widen the filter.
//   • Order of first appearance is preserved.

package sets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load merges codes from path (if non-empty) with inline codes.
// An empty result means "no filter".
func Load(path string, inline []string) ([]string, error) {
	var raw []string
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("sets: %w", err)
		}
		defer f.Close()
		fromFile, err := readLines(f)
		if err != nil {
			return nil, fmt.Errorf("sets: read %s: %w", path, err)
		}
		raw = append(raw, fromFile...)
	}
	raw = append(raw, inline...)
	return Normalize(raw)
}

// readLines returns the non-comment, non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Normalize lowercases, validates and de-duplicates codes.
func Normalize(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if !valid(c) {
			return nil, fmt.Errorf("sets: invalid set code %q", c)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// valid reports whether c looks like a set code.
func valid(c string) bool {
	if len(c) < 2 || len(c) > 6 {
		return false
	}
	for _, r := range c {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
