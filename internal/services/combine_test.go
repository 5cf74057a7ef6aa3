package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayah-search-api/internal/models"
)

func testVerses() map[int64]models.Verse {
	return map[int64]models.Verse{
		1: {ID: 1, Language: "en", Chapter: 1, Seq: 1, Text: "seek help through patience"},
		2: {ID: 2, Language: "en", Chapter: 1, Seq: 2, Text: "patience is key"},
		3: {ID: 3, Language: "en", Chapter: 2, Seq: 1, Text: "be steadfast"},
	}
}

func TestCombineDeduplicates(t *testing.T) {
	candidates := []models.SearchCandidate{
		{VerseID: 1, Score: 1.0, Method: models.MethodExact},
		{VerseID: 1, Score: 0.9, Method: models.MethodFuzzy},
		{VerseID: 1, Score: 0.95, Method: models.MethodSemantic},
		{VerseID: 2, Score: 0.8, Method: models.MethodFuzzy},
	}

	results := combine(candidates, testVerses(), 10)
	require.Len(t, results, 2)

	seen := map[int64]bool{}
	for _, r := range results {
		assert.False(t, seen[r.VerseID], "verse %d appears twice", r.VerseID)
		seen[r.VerseID] = true
	}

	// exact weight 1.0 beats fuzzy 0.8*0.9 and semantic 0.7*0.95
	assert.Equal(t, int64(1), results[0].VerseID)
	assert.Equal(t, models.MethodExact, results[0].WinningMethod)
	assert.InDelta(t, 1.0, results[0].CombinedScore, 1e-9)
	assert.Equal(t, map[string]float64{
		models.MethodExact:    1.0,
		models.MethodFuzzy:    0.9,
		models.MethodSemantic: 0.95,
	}, results[0].MethodScores)
}

func TestCombineWeights(t *testing.T) {
	candidates := []models.SearchCandidate{
		{VerseID: 2, Score: 1.0, Method: models.MethodFuzzy},
		{VerseID: 3, Score: 1.0, Method: models.MethodSemantic},
	}

	results := combine(candidates, testVerses(), 10)
	require.Len(t, results, 2)

	assert.Equal(t, int64(2), results[0].VerseID)
	assert.InDelta(t, 0.8, results[0].CombinedScore, 1e-9)
	assert.Equal(t, int64(3), results[1].VerseID)
	assert.InDelta(t, 0.7, results[1].CombinedScore, 1e-9)
}

func TestCombineMonotonicInMethodScore(t *testing.T) {
	base := []models.SearchCandidate{
		{VerseID: 1, Score: 1.0, Method: models.MethodExact},
		{VerseID: 1, Score: 0.5, Method: models.MethodSemantic},
	}
	raised := []models.SearchCandidate{
		{VerseID: 1, Score: 1.0, Method: models.MethodExact},
		{VerseID: 1, Score: 0.9, Method: models.MethodSemantic},
	}

	before := combine(base, testVerses(), 10)[0].CombinedScore
	after := combine(raised, testVerses(), 10)[0].CombinedScore
	assert.GreaterOrEqual(t, after, before)
}

func TestCombineTieBreakNaturalOrder(t *testing.T) {
	candidates := []models.SearchCandidate{
		{VerseID: 3, Score: 1.0, Method: models.MethodExact},
		{VerseID: 1, Score: 1.0, Method: models.MethodExact},
		{VerseID: 2, Score: 1.0, Method: models.MethodExact},
	}

	results := combine(candidates, testVerses(), 10)
	require.Len(t, results, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{results[0].VerseID, results[1].VerseID, results[2].VerseID})
}

func TestCombineTruncatesToLimit(t *testing.T) {
	candidates := []models.SearchCandidate{
		{VerseID: 1, Score: 1.0, Method: models.MethodExact},
		{VerseID: 2, Score: 1.0, Method: models.MethodExact},
		{VerseID: 3, Score: 1.0, Method: models.MethodExact},
	}

	results := combine(candidates, testVerses(), 2)
	assert.Len(t, results, 2)
}

func TestNormalizeScores(t *testing.T) {
	scored := []models.ScoredVerse{
		{Verse: models.Verse{ID: 1}, Score: 0.08},
		{Verse: models.Verse{ID: 2}, Score: 0.04},
		{Verse: models.Verse{ID: 3}, Score: 0.01},
	}

	normalized := normalizeScores(scored, 0.3)
	require.Len(t, normalized, 2)
	assert.InDelta(t, 1.0, normalized[0].Score, 1e-9)
	assert.InDelta(t, 0.5, normalized[1].Score, 1e-9)
	// 0.01/0.08 = 0.125 is below the floor
}

func TestNormalizeScoresEmptyAndZero(t *testing.T) {
	assert.Empty(t, normalizeScores(nil, 0.3))
	assert.Empty(t, normalizeScores([]models.ScoredVerse{
		{Verse: models.Verse{ID: 1}, Score: 0},
	}, 0.3))
}
