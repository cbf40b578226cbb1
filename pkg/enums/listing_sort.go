package enums

import "fmt"

// ListingSort selects the ordering of marketplace browse results.
type ListingSort string

const (
	ListingSortNewest     ListingSort = "newest"
	ListingSortOldest     ListingSort = "oldest"
	ListingSortPriceLow   ListingSort = "price-low"
	ListingSortPriceHigh  ListingSort = "price-high"
	ListingSortMostViewed ListingSort = "most-viewed"
)

var validListingSorts = []ListingSort{
	ListingSortNewest,
	ListingSortOldest,
	ListingSortPriceLow,
	ListingSortPriceHigh,
	ListingSortMostViewed,
}

func (s ListingSort) String() string {
	return string(s)
}

func (s ListingSort) IsValid() bool {
	for _, candidate := range validListingSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// OrderClause returns the primary ORDER BY expression; callers append the id tie-break.
func (s ListingSort) OrderClause() string {
	switch s {
	case ListingSortOldest:
		return "created_at ASC"
	case ListingSortPriceLow:
		return "price ASC"
	case ListingSortPriceHigh:
		return "price DESC"
	case ListingSortMostViewed:
		return "views DESC"
	default:
		return "created_at DESC"
	}
}

// ParseListingSort converts raw input into a ListingSort. Empty input yields newest.
func ParseListingSort(value string) (ListingSort, error) {
	if value == "" {
		return ListingSortNewest, nil
	}
	for _, candidate := range validListingSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort %q", value)
}
