// Package tokenizer turns raw message text into normalized, indexable terms.
// Based on: https://artem.krylysov.com/blog/2020/07/28/lets-build-a-full-text-search-engine/
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	snowballeng "github.com/kljensen/snowball/english"
)

// stopWords are too common to discriminate between messages.
var stopWords = map[string]struct{}{
	"a":    {},
	"an":   {},
	"and":  {},
	"as":   {},
	"at":   {},
	"be":   {},
	"but":  {},
	"by":   {},
	"for":  {},
	"have": {},
	"i":    {},
	"if":   {},
	"in":   {},
	"is":   {},
	"it":   {},
	"of":   {},
	"on":   {},
	"or":   {},
	"that": {},
	"the":  {},
	"to":   {},
	"with": {},
}

const defaultMinTermLength = 2

type Config struct {
	// MinTermLength drops tokens shorter than this many runes. Defaults to 2.
	MinTermLength int
	// Stemming reduces tokens to their root form with the Snowball English
	// stemmer. Off by default: stemming changes which terms land in the
	// index and therefore what exact and fuzzy lookups see.
	Stemming bool
	// ExtraStopWords extends the built-in stop word set.
	ExtraStopWords []string
}

type Tokenizer struct {
	minLen int
	stem   bool
	stop   map[string]struct{}
}

func New(cfg Config) *Tokenizer {
	minLen := cfg.MinTermLength
	if minLen <= 0 {
		minLen = defaultMinTermLength
	}

	stop := make(map[string]struct{}, len(stopWords)+len(cfg.ExtraStopWords))
	for w := range stopWords {
		stop[w] = struct{}{}
	}
	for _, w := range cfg.ExtraStopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	return &Tokenizer{
		minLen: minLen,
		stem:   cfg.Stemming,
		stop:   stop,
	}
}

func Default() *Tokenizer {
	return New(Config{})
}

// Tokenize runs the full analysis pipeline: split on non-alphanumeric runes,
// lowercase, drop short tokens and stop words, optionally stem. It is pure:
// the same input always yields the same term sequence.
//
// Normalization rule: Unicode lowercasing, no accent folding. "Café" and
// "cafe" are distinct terms.
func (t *Tokenizer) Tokenize(text string) []string {
	tokens := split(text)

	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.ToLower(token)
		if utf8.RuneCountInString(token) < t.minLen {
			continue
		}
		if _, ok := t.stop[token]; ok {
			continue
		}
		if t.stem {
			token = snowballeng.Stem(token, false)
		}
		r = append(r, token)
	}
	return r
}

// split breaks text into raw tokens, treating any rune that is not a letter
// or a number as a word boundary.
func split(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
