package quote

import (
	"fmt"
	"strings"

	"github.com/vitaldent/clinic-site/internal/catalog"
	"github.com/vitaldent/clinic-site/internal/money"
)

// Policy selects which catalog price is used as the unit price.
type Policy string

const (
	// PolicyMean uses the base price: the supplied price or the range mean.
	PolicyMean Policy = "mean"
	// PolicyMinimum uses the low end of the range.
	PolicyMinimum Policy = "minimum"
)

// ParsePolicy accepts "mean"/"media" and "minimum"/"min"/"minimo".
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "mean", "media", "promedio":
		return PolicyMean, nil
	case "minimum", "min", "minimo", "mínimo":
		return PolicyMinimum, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
	}
}

// UnitPrice returns the price the policy charges for one unit of t.
func (p Policy) UnitPrice(t catalog.Treatment) money.Money {
	if p == PolicyMinimum {
		return t.MinPrice
	}
	return t.BasePrice
}
