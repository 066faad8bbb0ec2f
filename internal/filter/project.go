package filter

import "github.com/rebeliceyang/lazyfilter/internal/models"

// Project derives the emitted result: every complete filter, in list order
func Project(state State) models.ViewResult {
	filters := make([]models.Filter, 0, len(state.Filters))
	for _, f := range state.Filters {
		if IsValid(f) {
			filters = append(filters, f.Clone())
		}
	}
	return models.ViewResult{Filters: filters}
}
