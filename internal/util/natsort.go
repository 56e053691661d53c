package util

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// natChunk is one run of a natural sort key: either a number or lowercased text.
type natChunk struct {
	numeric bool
	num     uint64
	text    string
}

// naturalKey splits s into alternating digit and non-digit runs.
// Digit runs too long for uint64 fall back to text comparison.
func naturalKey(s string) []natChunk {
	var chunks []natChunk
	runes := []rune(s)
	for i := 0; i < len(runes); {
		j := i
		digits := unicode.IsDigit(runes[i])
		for j < len(runes) && unicode.IsDigit(runes[j]) == digits {
			j++
		}
		run := string(runes[i:j])
		if digits {
			if n, err := strconv.ParseUint(run, 10, 64); err == nil {
				chunks = append(chunks, natChunk{numeric: true, num: n, text: run})
				i = j
				continue
			}
		}
		chunks = append(chunks, natChunk{text: strings.ToLower(run)})
		i = j
	}
	return chunks
}

// NaturalLess reports whether a sorts before b in natural order:
// digit runs compare numerically, text compares case-insensitively,
// and a number sorts before text at the same position.
func NaturalLess(a, b string) bool {
	ka, kb := naturalKey(a), naturalKey(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		ca, cb := ka[i], kb[i]
		switch {
		case ca.numeric && cb.numeric:
			if ca.num != cb.num {
				return ca.num < cb.num
			}
			// "01" and "1" are equal numerically; keep the order total
			if len(ca.text) != len(cb.text) {
				return len(ca.text) < len(cb.text)
			}
		case ca.numeric != cb.numeric:
			return ca.numeric
		default:
			if ca.text != cb.text {
				return ca.text < cb.text
			}
		}
	}
	if len(ka) != len(kb) {
		return len(ka) < len(kb)
	}
	return a < b
}

// NaturalSort sorts paths in place in natural order.
func NaturalSort(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return NaturalLess(paths[i], paths[j])
	})
}
