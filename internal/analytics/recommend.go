package analytics

import (
	"fmt"

	"budgetbook/internal/core"
)

type RecommendationKind string

const (
	RecommendBudgetIncrease RecommendationKind = "budget_increase"
	RecommendReallocation   RecommendationKind = "reallocation"
)

type Recommendation struct {
	Kind      RecommendationKind `json:"kind"`
	Category  core.Category      `json:"category,omitempty"`
	Suggested core.Money         `json:"suggested,omitempty"`
	Message   string             `json:"message"`
}

// Recommendations turns a prediction into actionable advice. When the
// predicted total crosses 90% of the budget it suggests raising the budget to
// 110% of the prediction; a predicted category spend above 120% of its cap
// yields a reallocation notice. Caps without a prediction stay silent.
func Recommendations(p Prediction, budget core.Money, caps map[core.Category]core.Money) []Recommendation {
	var out []Recommendation

	if budget.Cents > 0 && float64(p.Total.Cents) > 0.9*float64(budget.Cents) {
		suggested := core.Money{Cents: int64(float64(p.Total.Cents)*1.1 + 0.5)}
		out = append(out, Recommendation{
			Kind:      RecommendBudgetIncrease,
			Suggested: suggested,
			Message: fmt.Sprintf("predicted spending %s is close to the %s budget, consider raising it to %s",
				p.Total, budget, suggested),
		})
	}

	for _, c := range core.Categories {
		limit, ok := caps[c]
		if !ok || limit.Cents <= 0 {
			continue
		}
		predicted, ok := p.ByCategory[c]
		if !ok {
			continue
		}
		if float64(predicted.Cents) > 1.2*float64(limit.Cents) {
			out = append(out, Recommendation{
				Kind:     RecommendReallocation,
				Category: c,
				Message: fmt.Sprintf("predicted %s spending %s exceeds its %s allocation, consider reallocating",
					c, predicted, limit),
			})
		}
	}
	return out
}
