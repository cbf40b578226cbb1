package enums

import "fmt"

// ListingCondition describes the wear of a listed item.
type ListingCondition string

const (
	ListingConditionNew      ListingCondition = "new"
	ListingConditionLikeNew  ListingCondition = "like-new"
	ListingConditionUsed     ListingCondition = "used"
	ListingConditionForParts ListingCondition = "for-parts"
)

var validListingConditions = []ListingCondition{
	ListingConditionNew,
	ListingConditionLikeNew,
	ListingConditionUsed,
	ListingConditionForParts,
}

func (c ListingCondition) String() string {
	return string(c)
}

func (c ListingCondition) IsValid() bool {
	for _, candidate := range validListingConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseListingCondition converts raw input into a ListingCondition.
func ParseListingCondition(value string) (ListingCondition, error) {
	for _, candidate := range validListingConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing condition %q", value)
}
