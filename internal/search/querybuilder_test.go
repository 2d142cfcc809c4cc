package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/literature-search-service/internal/textanalysis"
)

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder()

	t.Run("single all-fields query without categories", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{Keywords: []string{"compiler", "optimization"}}

		queries := builder.Build("compiler passes", info, nil, 0)

		require.Len(t, queries, 1)
		assert.Equal(t, FieldAll, queries[0].Field)
		assert.Equal(t, "(compiler OR optimization)", queries[0].Query)
		assert.Zero(t, queries[0].FromYear)
	})

	t.Run("categories add an AND group and a title variant", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{Keywords: []string{"verification"}}

		queries := builder.Build("model checking", info, []string{"cs.LO", "cs.SE"}, 2021)

		require.Len(t, queries, 2)
		want := "(verification) AND (cat:cs.LO OR cat:cs.SE)"
		assert.Equal(t, want, queries[0].Query)
		assert.Equal(t, FieldAll, queries[0].Field)
		assert.Equal(t, want, queries[1].Query)
		assert.Equal(t, FieldTitle, queries[1].Field)
		for _, q := range queries {
			assert.Equal(t, []string{"cs.LO", "cs.SE"}, q.Categories)
			assert.Equal(t, 2021, q.FromYear)
		}
	})

	t.Run("skips technical terms already in the original query", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{
			TechnicalTerms: []string{"code generation", "model checking"},
		}

		queries := builder.Build("a survey of Code Generation", info, nil, 0)

		require.Len(t, queries, 1)
		assert.Equal(t, "(model checking)", queries[0].Query)
	})

	t.Run("deduplicates terms case-insensitively in first-seen order", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{
			TechnicalTerms: []string{"Neural Network"},
			Keywords:       []string{"neural network", "training"},
			Bigrams:        []string{"neural network"},
		}

		queries := builder.Build("", info, nil, 0)

		require.Len(t, queries, 1)
		assert.Equal(t, "(Neural Network OR training)", queries[0].Query)
	})

	t.Run("drops keywords of three characters or fewer", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{Keywords: []string{"llm", "gcc", "compiler"}}

		queries := builder.Build("toolchains", info, nil, 0)

		require.Len(t, queries, 1)
		assert.Equal(t, "(compiler)", queries[0].Query)
	})

	t.Run("caps expansion at ten keywords and five bigrams", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{
			Keywords: []string{
				"alpha", "bravo", "charlie", "delta", "echoes", "foxtrot",
				"golfer", "hotel", "india", "juliet", "overflow",
			},
			Bigrams: []string{
				"pair one", "pair two", "pair three", "pair four", "pair five", "pair six",
			},
		}

		queries := builder.Build("unrelated", info, nil, 0)

		require.Len(t, queries, 1)
		assert.NotContains(t, queries[0].Query, "overflow")
		assert.NotContains(t, queries[0].Query, "pair six")
		assert.Contains(t, queries[0].Query, "juliet")
		assert.Contains(t, queries[0].Query, "pair five")
	})

	t.Run("falls back to the raw query when nothing was extracted", func(t *testing.T) {
		queries := builder.Build("quantum widgets", textanalysis.ExtractedInfo{}, nil, 0)

		require.Len(t, queries, 1)
		assert.Equal(t, "quantum widgets", queries[0].Query)
	})
}
