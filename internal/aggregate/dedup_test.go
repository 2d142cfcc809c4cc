package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/literature-search-service/internal/domain"
)

func TestDeduplicate(t *testing.T) {
	t.Run("keeps the first occurrence of each ID", func(t *testing.T) {
		papers := []domain.PaperRecord{
			{ID: "a", Title: "first"},
			{ID: "b", Title: "second"},
			{ID: "a", Title: "duplicate of first"},
		}

		unique := Deduplicate(papers)

		require.Len(t, unique, 2)
		assert.Equal(t, "first", unique[0].Title)
		assert.Equal(t, "second", unique[1].Title)
	})

	t.Run("drops records with empty IDs", func(t *testing.T) {
		papers := []domain.PaperRecord{
			{ID: "", Title: "no identity"},
			{ID: "a", Title: "kept"},
			{ID: "", Title: "also no identity"},
		}

		unique := Deduplicate(papers)

		require.Len(t, unique, 1)
		assert.Equal(t, "a", unique[0].ID)
	})

	t.Run("is idempotent", func(t *testing.T) {
		papers := []domain.PaperRecord{{ID: "a"}, {ID: "b"}, {ID: "a"}}

		once := Deduplicate(papers)
		twice := Deduplicate(once)

		assert.Equal(t, once, twice)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, Deduplicate(nil))
	})
}
