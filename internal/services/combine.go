package services

import (
	"sort"

	"github.com/ayah-search-api/internal/models"
)

// methodWeights is the fixed hybrid blend. Fulltext has no weight: it is an
// explicit single-method alternative to fuzzy, never co-applied in hybrid,
// so the two cannot double-count the same lexical evidence.
var methodWeights = map[string]float64{
	models.MethodExact:    1.0,
	models.MethodFuzzy:    0.8,
	models.MethodSemantic: 0.7,
}

// lexicalFloor discards normalized lexical scores below this value so
// near-random matches do not pollute hybrid merges.
const lexicalFloor = 0.3

// combine merges per-method candidates into one ranked, deduplicated list.
// The combined score for a verse is the maximum of weight×score over the
// methods that returned it, which makes the result monotonic in every
// contributing method's score. Ties are broken by verse natural order
// (chapter, then seq) for reproducibility. It is a pure function: the
// entire weighting policy lives here.
func combine(candidates []models.SearchCandidate, verses map[int64]models.Verse, limit int) []models.RankedResult {
	merged := make(map[int64]*models.RankedResult, len(candidates))

	for _, c := range candidates {
		weight, ok := methodWeights[c.Method]
		if !ok {
			weight = 1.0
		}
		weighted := weight * c.Score

		entry, seen := merged[c.VerseID]
		if !seen {
			verse := verses[c.VerseID]
			entry = &models.RankedResult{
				VerseID:       c.VerseID,
				Language:      verse.Language,
				Chapter:       verse.Chapter,
				Seq:           verse.Seq,
				Text:          verse.Text,
				CombinedScore: weighted,
				WinningMethod: c.Method,
				MethodScores:  map[string]float64{c.Method: c.Score},
			}
			merged[c.VerseID] = entry
			continue
		}

		if prev, dup := entry.MethodScores[c.Method]; !dup || c.Score > prev {
			entry.MethodScores[c.Method] = c.Score
		}
		if weighted > entry.CombinedScore {
			entry.CombinedScore = weighted
			entry.WinningMethod = c.Method
		}
	}

	results := make([]models.RankedResult, 0, len(merged))
	for _, entry := range merged {
		results = append(results, *entry)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		if results[i].Chapter != results[j].Chapter {
			return results[i].Chapter < results[j].Chapter
		}
		return results[i].Seq < results[j].Seq
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// normalizeScores maps raw engine scores into [0,1] by dividing by the
// maximum observed in the result set, then drops candidates below the floor.
// Raw engine scores are not globally bounded, so this keeps cross-query
// comparisons stable.
func normalizeScores(scored []models.ScoredVerse, floor float64) []models.ScoredVerse {
	if len(scored) == 0 {
		return scored
	}

	max := scored[0].Score
	for _, s := range scored {
		if s.Score > max {
			max = s.Score
		}
	}
	if max <= 0 {
		return []models.ScoredVerse{}
	}

	out := make([]models.ScoredVerse, 0, len(scored))
	for _, s := range scored {
		s.Score = s.Score / max
		if s.Score >= floor {
			out = append(out, s)
		}
	}
	return out
}
