package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/literature-search-service/internal/textanalysis"
)

func TestFallbackGenerator_Generate(t *testing.T) {
	gen := NewFallbackGenerator()

	t.Run("emits unused technical terms first", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{
			TechnicalTerms: []string{"model checking", "code generation", "type system"},
		}

		queries := gen.Generate(info, "a study of code generation")

		require.NotEmpty(t, queries)
		assert.Equal(t, "model checking", queries[0])
		assert.Equal(t, "type system", queries[1])
		assert.NotContains(t, queries, "code generation")
	})

	t.Run("pairs keywords with the anchor phrase", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{Keywords: []string{"scheduler"}}

		queries := gen.Generate(info, "kernel internals")

		require.Len(t, queries, 1)
		assert.Equal(t, `"scheduler" code generation`, queries[0])
	})

	t.Run("skips keywords already in the query", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{Keywords: []string{"kernel", "scheduler"}}

		queries := gen.Generate(info, "kernel internals")

		require.Len(t, queries, 1)
		assert.Equal(t, `"scheduler" code generation`, queries[0])
	})

	t.Run("caps the total at five", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{
			TechnicalTerms: []string{"model checking", "type system", "static analysis", "semantics"},
			Keywords:       []string{"alpha", "bravo", "charlie", "delta", "echoes", "foxtrot"},
			Bigrams:        []string{"pair one", "pair two", "pair three"},
		}

		queries := gen.Generate(info, "unrelated")

		assert.Len(t, queries, 5)
	})

	t.Run("uses canned domain phrases when nothing else is available", func(t *testing.T) {
		info := textanalysis.ExtractedInfo{
			Domains: []string{"embedded_systems", "formal_methods"},
		}

		queries := gen.Generate(info, "whatever")

		assert.Equal(t, []string{
			"embedded system real-time software",
			"formal verification software",
		}, queries)
	})

	t.Run("empty info yields no queries", func(t *testing.T) {
		assert.Empty(t, gen.Generate(textanalysis.ExtractedInfo{}, "anything"))
	})
}
