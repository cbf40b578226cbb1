package enums

import "fmt"

// SubscriptionPlan is the billing cadence of a premium shop upgrade.
type SubscriptionPlan string

const (
	SubscriptionPlanMonthly SubscriptionPlan = "monthly"
	SubscriptionPlanAnnual  SubscriptionPlan = "annual"
)

var validSubscriptionPlans = []SubscriptionPlan{
	SubscriptionPlanMonthly,
	SubscriptionPlanAnnual,
}

func (p SubscriptionPlan) String() string {
	return string(p)
}

func (p SubscriptionPlan) IsValid() bool {
	for _, candidate := range validSubscriptionPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParseSubscriptionPlan(value string) (SubscriptionPlan, error) {
	for _, candidate := range validSubscriptionPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan %q", value)
}
