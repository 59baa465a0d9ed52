package ingest

import "github.com/Marco204391/fanta-motogp-sub001/internal/models"

// CategoryEntry binds an upstream category uuid to one of the three
// championship classes.
type CategoryEntry struct {
	ExternalID string
	Category   models.Category
}

// CategoryTable resolves upstream category uuids and preserves a stable
// iteration order for per-category sync loops.
type CategoryTable struct {
	entries []CategoryEntry
	byID    map[string]models.Category
}

func NewCategoryTable(entries []CategoryEntry) *CategoryTable {
	byID := make(map[string]models.Category, len(entries))
	for _, entry := range entries {
		byID[entry.ExternalID] = entry.Category
	}
	return &CategoryTable{entries: entries, byID: byID}
}

// Resolve maps an upstream category uuid to its class. The second
// return is false for uuids outside the three championship classes.
func (t *CategoryTable) Resolve(externalID string) (models.Category, bool) {
	category, ok := t.byID[externalID]
	return category, ok
}

// Entries returns the table's categories in declaration order
func (t *CategoryTable) Entries() []CategoryEntry {
	return t.entries
}

// DefaultCategoryTable carries the upstream uuids of the three
// championship classes, top class first.
func DefaultCategoryTable() *CategoryTable {
	return NewCategoryTable([]CategoryEntry{
		{ExternalID: "e8c110ad-64aa-4e8e-8a86-f2f152f6a942", Category: models.CategoryMotoGP},
		{ExternalID: "549640b8-fd9c-4245-acfd-60e4bc38b25c", Category: models.CategoryMoto2},
		{ExternalID: "954f7e65-2ef2-4423-b949-4961cc603e45", Category: models.CategoryMoto3},
	})
}
