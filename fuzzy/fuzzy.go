// Package fuzzy finds indexed terms within a bounded edit distance of a
// query term, for typo-tolerant search.
//
// The scan is linear in the vocabulary: O(|terms| * |query| * |term|) in the
// worst case. That is the known scalability ceiling of this design; it is
// sized for one user's conversation history, not a server-scale corpus.
package fuzzy

import (
	"context"
	"runtime"
	"sort"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Candidate is an indexed term within the requested edit distance.
type Candidate struct {
	Term     string
	Distance int
}

// Candidates scans terms for entries whose Levenshtein distance to query is
// at most maxDist, ordered by ascending distance with lexical tiebreak. The
// terms slice must be an immutable snapshot; the scan is sharded across
// workers and aborts between terms when ctx is cancelled, returning no
// partial results.
//
// Query terms shorter than two runes yield no candidates, matching the
// tokenizer's minimum term length.
func Candidates(ctx context.Context, terms []string, query string, maxDist int) ([]Candidate, error) {
	if utf8.RuneCountInString(query) < 2 || maxDist < 0 || len(terms) == 0 {
		return nil, nil
	}

	queryRunes := []rune(query)

	workers := runtime.NumCPU()
	if workers > len(terms) {
		workers = len(terms)
	}

	chunks := make([][]Candidate, workers)
	chunkSize := (len(terms) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunkSize
		stop := start + chunkSize
		if stop > len(terms) {
			stop = len(terms)
		}
		if start >= stop {
			break
		}

		g.Go(func() error {
			var local []Candidate
			for _, term := range terms[start:stop] {
				if err := gctx.Err(); err != nil {
					return err
				}
				if d, ok := boundedDistance(queryRunes, []rune(term), maxDist); ok {
					local = append(local, Candidate{Term: term, Distance: d})
				}
			}
			chunks[w] = local
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Candidate
	for _, chunk := range chunks {
		out = append(out, chunk...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Term < out[j].Term
	})
	return out, nil
}

// Distance is the unbounded Levenshtein distance between two strings.
// Insertions, deletions, and substitutions each cost 1.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	max := len(ra) + len(rb)
	d, _ := boundedDistance(ra, rb, max)
	return d
}

// boundedDistance computes the Levenshtein distance between a and b,
// reporting false as soon as the distance provably exceeds max. The early
// exits never falsely include a term: a length difference beyond max is a
// lower bound on the distance, and so is the minimum of a DP row.
func boundedDistance(a, b []rune, max int) (int, bool) {
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if diff > max {
		return 0, false
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > max {
			return 0, false
		}
		prev, curr = curr, prev
	}

	if prev[len(b)] > max {
		return 0, false
	}
	return prev[len(b)], true
}

func minOf(a, b, c int) int {
	if a < b && a < c {
		return a
	} else if b < c {
		return b
	}
	return c
}
