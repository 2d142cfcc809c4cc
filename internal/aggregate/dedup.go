package aggregate

import "github.com/helixir/literature-search-service/internal/domain"

// Deduplicate removes records whose ID was already seen, keeping the first
// occurrence and the original ordering. Records with an empty ID are dropped
// outright since they cannot be distinguished from one another. The operation
// is idempotent.
func Deduplicate(papers []domain.PaperRecord) []domain.PaperRecord {
	seen := make(map[string]struct{}, len(papers))
	unique := make([]domain.PaperRecord, 0, len(papers))

	for i := range papers {
		id := papers[i].ID
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, papers[i])
	}
	return unique
}
