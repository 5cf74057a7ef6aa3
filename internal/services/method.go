package services

import (
	"strings"

	"github.com/ayah-search-api/internal/models"
)

// interrogatives are the question-word prefixes that route an auto query
// toward semantic search. Arabic forms cover the supported locales' question
// words.
var interrogatives = map[string]bool{
	"what": true, "how": true, "why": true, "when": true,
	"where": true, "who": true, "which": true,
	"ما": true, "ماذا": true, "كيف": true, "لماذا": true,
	"متى": true, "أين": true, "اين": true, "من": true, "هل": true,
}

// chooseMethod resolves the auto method. It is a pure function of the query
// string and the provider availability flag: short lookups go to exact
// matching, conceptual questions to semantic when a provider is configured,
// and everything else to full-text ranking.
func chooseMethod(query string, semanticAvailable bool) string {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(tokens) <= 2 {
		return models.MethodExact
	}
	if interrogatives[strings.Trim(tokens[0], "?¿؟!.,")] {
		if semanticAvailable {
			return models.MethodSemantic
		}
		return models.MethodFullText
	}
	return models.MethodFullText
}
