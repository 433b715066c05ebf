package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("Anna", "anna"))
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 4, LevenshteinDistance("", "abcd"))
	assert.Equal(t, 0, LevenshteinDistance("Đức", "duc"))
}

func TestFuzzyMatch(t *testing.T) {
	assert.True(t, FuzzyMatch("john", "John Smith", 1))
	assert.True(t, FuzzyMatch("smth", "John Smith", 1))
	assert.False(t, FuzzyMatch("zzz", "John Smith", 1))
	assert.False(t, FuzzyMatch("", "John Smith", 1))
}

func TestScoreUserRanksExactAboveFuzzy(t *testing.T) {
	exact := ScoreUser("maria", "Maria", "maria@example.com")
	prefix := ScoreUser("mar", "Marco Polo", "marco@example.com")
	typo := ScoreUser("mria", "Maria", "someone@example.com")
	none := ScoreUser("zebra", "Maria", "maria@example.com")

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, typo)
	assert.Greater(t, typo, 0.0)
	assert.Equal(t, 0.0, none)
}

func TestScoreUserMatchesEmail(t *testing.T) {
	assert.Greater(t, ScoreUser("alice@corp.test", "", "alice@corp.test"), ScoreUser("alice", "", "alice@corp.test"))
	assert.Greater(t, ScoreUser("corp", "", "alice@corp.test"), 0.0)
}
