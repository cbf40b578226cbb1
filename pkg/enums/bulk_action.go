package enums

import "fmt"

// BulkAction is a shop owner's batch operation on listings.
type BulkAction string

const (
	BulkActionArchive  BulkAction = "archive"
	BulkActionActivate BulkAction = "activate"
	BulkActionMarkSold BulkAction = "markSold"
)

var validBulkActions = []BulkAction{
	BulkActionArchive,
	BulkActionActivate,
	BulkActionMarkSold,
}

func (a BulkAction) String() string {
	return string(a)
}

func (a BulkAction) IsValid() bool {
	for _, candidate := range validBulkActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// TargetStatus maps the action onto the listing status it sets.
func (a BulkAction) TargetStatus() ListingStatus {
	switch a {
	case BulkActionArchive:
		return ListingStatusArchived
	case BulkActionActivate:
		return ListingStatusActive
	case BulkActionMarkSold:
		return ListingStatusSold
	default:
		return ""
	}
}

// ParseBulkAction converts raw input into a BulkAction.
func ParseBulkAction(value string) (BulkAction, error) {
	for _, candidate := range validBulkActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid action %q", value)
}
