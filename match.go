package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// matchOne resolves input to one of choices, accepting an exact match or
// the best fuzzy match, so "lndmk" picks "landmarks".
func matchOne(what, input string, choices []string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if slices.Contains(choices, input) {
		return input, nil
	}
	matches := fuzzy.Find(input, choices)
	if input == "" || len(matches) == 0 {
		return "", fmt.Errorf("unknown %s %q, choose one of: %s", what, input, strings.Join(choices, ", "))
	}
	return choices[matches[0].Index], nil
}

func matchAll(what string, inputs, choices []string) ([]string, error) {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		m, err := matchOne(what, in, choices)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
