package fuzzy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"campaign", "campaing", 2}, // transposition costs two single-char edits
		{"kitten", "sitting", 3},
		{"abc", "", 3},
		{"café", "cafe", 1},
		{"ab", "ba", 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Distance(tc.a, tc.b), "Distance(%q, %q)", tc.a, tc.b)
		assert.Equal(t, tc.want, Distance(tc.b, tc.a), "Distance(%q, %q)", tc.b, tc.a)
	}
}

func TestCandidates(t *testing.T) {
	terms := []string{"campaign", "complain", "champion", "budget", "camp"}

	got, err := Candidates(context.Background(), terms, "campaing", 2)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, Candidate{Term: "campaign", Distance: 2}, got[0])
}

func TestCandidatesOrdering(t *testing.T) {
	terms := []string{"cart", "care", "card", "cars", "carp", "car"}

	got, err := Candidates(context.Background(), terms, "car", 1)
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, Candidate{Term: "car", Distance: 0}, got[0], "closest match first")
	for i := 1; i < len(got); i++ {
		if got[i-1].Distance == got[i].Distance {
			assert.Less(t, got[i-1].Term, got[i].Term, "lexical tiebreak within a distance")
		} else {
			assert.Less(t, got[i-1].Distance, got[i].Distance)
		}
	}
}

func TestCandidatesShortQuery(t *testing.T) {
	got, err := Candidates(context.Background(), []string{"ab", "abc"}, "a", 2)
	require.NoError(t, err)
	assert.Empty(t, got, "single-rune queries are not fuzzy-matched")
}

func TestCandidatesEmptyVocabulary(t *testing.T) {
	got, err := Candidates(context.Background(), nil, "campaign", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCandidatesCancelled(t *testing.T) {
	terms := make([]string, 10000)
	for i := range terms {
		terms[i] = "term-longer-than-the-query"
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Candidates(ctx, terms, "campaign", 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got, "a cancelled scan returns no partial results")
}

// boundedDistance must agree with the unbounded distance whenever the true
// distance is within the bound, and must exclude exactly the terms beyond it.
func TestBoundedDistanceAgreesWithUnbounded(t *testing.T) {
	words := []string{"", "a", "ab", "abc", "campaign", "campaing", "champion", "complain", "budget", "café", "cafe"}
	for _, a := range words {
		for _, b := range words {
			want := Distance(a, b)
			for max := 0; max <= 4; max++ {
				d, ok := boundedDistance([]rune(a), []rune(b), max)
				if want <= max {
					require.True(t, ok, "boundedDistance(%q, %q, %d)", a, b, max)
					assert.Equal(t, want, d)
				} else {
					assert.False(t, ok, "boundedDistance(%q, %q, %d) must exceed the bound", a, b, max)
				}
			}
		}
	}
}
