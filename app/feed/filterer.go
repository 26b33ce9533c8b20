package feed

import (
	"fmt"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run flags records matching the source's filters. Filtered records stay
// in the batch; storage and display decide what to do with the flag.
func (f *Filterer) Run(records []Record, config *Config) []Record {
	if len(config.Filters) == 0 {
		return records
	}

	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		isFiltered, filterReason := f.applyFilters(rec, config.Filters)
		rec.IsFiltered = isFiltered
		rec.FilterReason = filterReason
		filtered = append(filtered, rec)
	}

	return filtered
}

func (f *Filterer) applyFilters(rec Record, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(rec, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(rec Record, field string) string {
	switch field {
	case "title":
		return rec.Title
	case "description":
		return rec.Description
	case "content":
		return rec.Content
	case "author":
		return rec.Author
	case "link":
		return rec.Link
	case "categories":
		return strings.Join(rec.Categories, " ")
	default:
		return ""
	}
}
