package enums

import "time"

// AnalyticsPeriod is the lookback window for shop analytics.
type AnalyticsPeriod string

const (
	AnalyticsPeriod7d  AnalyticsPeriod = "7d"
	AnalyticsPeriod30d AnalyticsPeriod = "30d"
	AnalyticsPeriod90d AnalyticsPeriod = "90d"
	AnalyticsPeriodAll AnalyticsPeriod = "all"
)

var validAnalyticsPeriods = []AnalyticsPeriod{
	AnalyticsPeriod7d,
	AnalyticsPeriod30d,
	AnalyticsPeriod90d,
	AnalyticsPeriodAll,
}

func (p AnalyticsPeriod) String() string {
	return string(p)
}

func (p AnalyticsPeriod) IsValid() bool {
	for _, candidate := range validAnalyticsPeriods {
		if candidate == p {
			return true
		}
	}
	return false
}

// StartDate returns the inclusive lower bound of the window relative to now.
func (p AnalyticsPeriod) StartDate(now time.Time) time.Time {
	switch p {
	case AnalyticsPeriod7d:
		return now.AddDate(0, 0, -7)
	case AnalyticsPeriod90d:
		return now.AddDate(0, 0, -90)
	case AnalyticsPeriodAll:
		return time.Unix(0, 0).UTC()
	default:
		return now.AddDate(0, 0, -30)
	}
}

// ParseAnalyticsPeriod never fails; unknown or empty input means 30d.
func ParseAnalyticsPeriod(value string) AnalyticsPeriod {
	for _, candidate := range validAnalyticsPeriods {
		if string(candidate) == value {
			return candidate
		}
	}
	return AnalyticsPeriod30d
}
