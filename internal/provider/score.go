package provider

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Evaluate compares what the recognizer heard with the reference phrase
// and turns the similarity into a 0-100 score with a short, encouraging
// comment.
func Evaluate(heard, reference string) Evaluation {
	score := Similarity(heard, reference)
	return Evaluation{
		Score:   score,
		Comment: comment(score),
		Heard:   strings.TrimSpace(heard),
	}
}

// Similarity scores two phrases from 0 (nothing alike) to 100 (same
// words). Case, punctuation, spacing and Unicode composition are ignored.
func Similarity(a, b string) int {
	ra, rb := []rune(normalize(a)), []rune(normalize(b))
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 0
	}
	d := levenshtein(ra, rb)
	return (longest - d) * 100 / longest
}

func comment(score int) string {
	switch {
	case score >= 90:
		return "Amazing! You sound like a native speaker!"
	case score >= 70:
		return "Great job! Almost perfect."
	case score >= 40:
		return "Good try! Listen once more and repeat."
	default:
		return "Let's practice that one together again."
	}
}

func normalize(s string) string {
	s = norm.NFC.String(strings.ToLower(s))
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.Is(unicode.Mn, r), unicode.Is(unicode.Mc, r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
