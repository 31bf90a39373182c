package personalize

import (
	"sort"
	"unicode/utf8"

	"github.com/Veraticus/finshare-ai/internal/lexicon"
	"github.com/Veraticus/finshare-ai/internal/model"
)

// MinTokenLength is the shortest token, in runes, that can be learned.
const MinTokenLength = 3

// DefaultMaxNewTokens caps how many tokens one category learns per run.
const DefaultMaxNewTokens = 3

type tokenCount struct {
	token string
	count int
	first int
}

// Learn derives overlay tokens from a user's corrections. For each corrected
// category it ranks tokens by frequency, then by first appearance, skips tokens
// the base lexicon already lists for that category and keeps at most max.
// The result depends only on the records, so repeated runs agree.
func Learn(records []model.FeedbackRecord, base *lexicon.Lexicon, max int) map[model.Category][]string {
	if max <= 0 {
		max = DefaultMaxNewTokens
	}

	grouped := make(map[model.Category]map[string]*tokenCount)
	position := 0
	for _, rec := range records {
		if rec.CorrectedCategory == "" {
			continue
		}
		counts := grouped[rec.CorrectedCategory]
		if counts == nil {
			counts = make(map[string]*tokenCount)
			grouped[rec.CorrectedCategory] = counts
		}
		for _, tok := range lexicon.Tokenize(rec.MerchantText) {
			if utf8.RuneCountInString(tok) < MinTokenLength {
				continue
			}
			tc, ok := counts[tok]
			if !ok {
				tc = &tokenCount{token: tok, first: position}
				counts[tok] = tc
			}
			tc.count++
			position++
		}
	}

	learned := make(map[model.Category][]string, len(grouped))
	for category, counts := range grouped {
		ranked := make([]*tokenCount, 0, len(counts))
		for _, tc := range counts {
			ranked = append(ranked, tc)
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].count != ranked[j].count {
				return ranked[i].count > ranked[j].count
			}
			return ranked[i].first < ranked[j].first
		})

		var tokens []string
		for _, tc := range ranked {
			if len(tokens) == max {
				break
			}
			if base != nil && base.HasKeyword(category, tc.token) {
				continue
			}
			tokens = append(tokens, tc.token)
		}
		if len(tokens) > 0 {
			learned[category] = tokens
		}
	}

	return learned
}
