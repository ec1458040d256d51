package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasWildcard(t *testing.T) {
	assert.True(t, HasWildcard("camp*"))
	assert.True(t, HasWildcard("c?mp"))
	assert.False(t, HasWildcard("campaign"))
	assert.False(t, HasWildcard("a.c+b"))
}

func TestMatchesStar(t *testing.T) {
	terms := []string{"abc", "ac", "ab", "abcd", "xabc"}

	got, err := Matches(terms, "a*c")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "ac"}, got, "match is anchored at both ends")
}

func TestMatchesQuestionMark(t *testing.T) {
	terms := []string{"cat", "cut", "coat", "ct"}

	got, err := Matches(terms, "c?t")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "cut"}, got)
}

func TestMatchesLiteralRegexMetacharacters(t *testing.T) {
	terms := []string{"a.c", "abc", "axc"}

	got, err := Matches(terms, "a.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.c"}, got, "a dot in the pattern is a literal dot")

	got, err = Matches([]string{"a+b", "aab"}, "a+b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a+b"}, got)
}

func TestMatchesPrefixAndSuffix(t *testing.T) {
	terms := []string{"campaign", "camping", "decamp", "camp"}

	got, err := Matches(terms, "camp*")
	require.NoError(t, err)
	assert.Equal(t, []string{"camp", "campaign", "camping"}, got)

	got, err = Matches(terms, "*camp")
	require.NoError(t, err)
	assert.Equal(t, []string{"camp", "decamp"}, got)
}

func TestMatchesNoHits(t *testing.T) {
	got, err := Matches([]string{"alpha", "beta"}, "z*")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompileBareStarMatchesEverything(t *testing.T) {
	got, err := Matches([]string{"one", "two"}, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
}
