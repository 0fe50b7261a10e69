package graph

import (
	"regexp"
	"strings"

	"github.com/medassist-io/graphrag/model"
)

// maxKeywords caps the keyword list so a single query cannot fan out into
// an unbounded number of graph lookups.
const maxKeywords = 5

// scriptRunRegexp extracts fallback keyword candidates: short contiguous
// CJK runs and latin words.
var scriptRunRegexp = regexp.MustCompile(`[\p{Han}]{2,4}|[a-zA-Z][a-zA-Z-]{2,}`)

// wordRegexp extracts the word set used for partial-match scoring.
var wordRegexp = regexp.MustCompile(`[\p{Han}]{2,}|[a-zA-Z]{2,}`)

// ClassifyIntent determines what a query seeks via a first-match-wins scan
// of the vocabulary's ordered intent phrase table.
func ClassifyIntent(query string, vocab *model.Vocabulary) model.Intent {
	queryLower := strings.ToLower(query)
	for _, entry := range vocab.IntentPatterns {
		for _, phrase := range entry.Phrases {
			if strings.Contains(queryLower, strings.ToLower(phrase)) {
				return entry.Intent
			}
		}
	}
	return model.IntentGeneral
}

// ExtractKeywords pulls medical keywords out of a query and classifies its
// intent. Extraction runs three stages: curated vocabulary substring hits,
// precision term patterns, and, only when both yield nothing, a fallback
// that keeps short script runs minus stopwords. The result is de-duplicated
// preserving order and capped at maxKeywords.
func ExtractKeywords(query string, vocab *model.Vocabulary) ([]string, model.Intent) {
	intent := ClassifyIntent(query, vocab)
	queryLower := strings.ToLower(query)

	var keywords []string
	for _, list := range vocab.Keywords {
		for _, keyword := range list {
			if strings.Contains(queryLower, strings.ToLower(keyword)) {
				keywords = append(keywords, keyword)
			}
		}
	}

	keywords = append(keywords, matchTermPatterns(query, vocab.TermPatterns)...)

	if len(keywords) == 0 {
		for _, run := range scriptRunRegexp.FindAllString(query, -1) {
			runLower := strings.ToLower(run)
			if vocab.Stopwords[runLower] {
				continue
			}
			keywords = append(keywords, runLower)
		}
	}

	return dedupeKeywords(keywords, maxKeywords), intent
}

// matchTermPatterns applies the precision patterns with their boundary
// guards. RE2 has no look-around, so a match is dropped when the text
// directly before/after it matches one of the guard fragments.
func matchTermPatterns(query string, patterns []model.TermPattern) []string {
	var hits []string
	queryLower := strings.ToLower(query)

	for _, term := range patterns {
		for _, loc := range term.Pattern.FindAllStringIndex(query, -1) {
			before := queryLower[:loc[0]]
			after := queryLower[loc[1]:]

			blocked := false
			for _, guard := range term.NotPrecededBy {
				if strings.HasSuffix(before, strings.ToLower(guard)) {
					blocked = true
					break
				}
			}
			if !blocked {
				for _, guard := range term.NotFollowedBy {
					if strings.HasPrefix(after, strings.ToLower(guard)) {
						blocked = true
						break
					}
				}
			}
			if !blocked {
				hits = append(hits, query[loc[0]:loc[1]])
			}
		}
	}
	return hits
}

// dedupeKeywords removes case-insensitive duplicates preserving first
// occurrence order and caps the result at limit.
func dedupeKeywords(keywords []string, limit int) []string {
	seen := map[string]bool{}
	result := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		key := strings.ToLower(keyword)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, keyword)
		if len(result) == limit {
			break
		}
	}
	return result
}
