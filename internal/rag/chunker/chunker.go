package chunker

import (
	"fmt"

	"github.com/akonduru/reviewrag/internal/domain/review"
)

// Split cuts text into fixed-window segments of at most maxLength runes where
// consecutive segments share exactly overlap runes. Deterministic: the same
// input always produces the same segments, which is what makes re-projection
// of an unchanged review idempotent.
//
// Stripping the leading overlap from every segment after the first and
// concatenating reconstructs text exactly.
func Split(text string, maxLength, overlap int) ([]string, error) {
	if maxLength <= 0 {
		return nil, fmt.Errorf("%w: maxLength %d must be positive", review.ErrInvalidParameter, maxLength)
	}
	if overlap < 0 || overlap >= maxLength {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, maxLength)", review.ErrInvalidParameter, overlap)
	}

	runes := []rune(text)
	if len(runes) <= maxLength {
		return []string{text}, nil
	}

	stride := maxLength - overlap
	var chunks []string
	for start := 0; ; start += stride {
		end := start + maxLength
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}

// Reassemble is the inverse of Split for a known overlap. Used by tests and
// by the index consistency check.
func Reassemble(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	out := []rune(chunks[0])
	for _, c := range chunks[1:] {
		r := []rune(c)
		if len(r) > overlap {
			out = append(out, r[overlap:]...)
		}
	}
	return string(out)
}
