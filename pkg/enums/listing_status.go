package enums

import "fmt"

// ListingStatus is the lifecycle state of a marketplace listing.
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusArchived ListingStatus = "archived"
)

var validListingStatuses = []ListingStatus{
	ListingStatusActive,
	ListingStatusSold,
	ListingStatusArchived,
}

// sold is terminal.
var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingStatusActive:   {ListingStatusSold, ListingStatusArchived},
	ListingStatusArchived: {ListingStatusActive, ListingStatusSold},
}

// ListingStatuses returns every status in display order.
func ListingStatuses() []ListingStatus {
	out := make([]ListingStatus, len(validListingStatuses))
	copy(out, validListingStatuses)
	return out
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether a listing may move from s to next.
// Staying in the same state is always allowed.
func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, candidate := range listingTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
