// Package quote computes price estimates for catalog treatments.
package quote

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vitaldent/clinic-site/internal/catalog"
	"github.com/vitaldent/clinic-site/internal/money"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var quoteTracer = otel.Tracer("vitaldent/quote")

// DefaultTiers are the discount percentages offered when none are configured.
var DefaultTiers = []int{0, 5, 10, 15, 20}

// Request is the raw calculator form input.
type Request struct {
	TreatmentID string
	Quantity    string
	Discount    string
}

// Quote is the computed breakdown for one treatment.
type Quote struct {
	TreatmentID     int         `json:"tratamiento_id"`
	TreatmentName   string      `json:"tratamiento"`
	UnitPrice       money.Money `json:"precio_unitario"`
	PriceLabel      string      `json:"rango_precio"`
	Quantity        int         `json:"cantidad"`
	Subtotal        money.Money `json:"subtotal"`
	DiscountPercent int         `json:"descuento_porcentaje"`
	DiscountAmount  money.Money `json:"descuento_monto"`
	Total           money.Money `json:"total"`
	Policy          Policy      `json:"politica"`
}

// Notice is the confirmation message shown with the breakdown.
func (q *Quote) Notice() string {
	return fmt.Sprintf("El costo total estimado es: $%s MXN", q.Total.Fixed())
}

// Observer records quote outcomes.
type Observer interface {
	ObserveQuote(policy string, outcome string)
}

// Calculator computes quotes under one price policy and tier set.
type Calculator struct {
	policy   Policy
	tiers    []int
	observer Observer
}

// NewCalculator builds a calculator. Empty tiers fall back to DefaultTiers;
// tiers outside 0..100 are discarded.
func NewCalculator(policy Policy, tiers []int, observer Observer) *Calculator {
	if policy == "" {
		policy = PolicyMean
	}
	valid := make([]int, 0, len(tiers))
	for _, t := range tiers {
		if t >= 0 && t <= 100 && !slices.Contains(valid, t) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		valid = append(valid, DefaultTiers...)
	}
	slices.Sort(valid)
	return &Calculator{policy: policy, tiers: valid, observer: observer}
}

// Policy returns the configured price policy.
func (c *Calculator) Policy() Policy { return c.policy }

// Tiers returns a copy of the accepted discount percentages.
func (c *Calculator) Tiers() []int { return slices.Clone(c.tiers) }

// Calculate resolves req against treatments and returns the breakdown.
func (c *Calculator) Calculate(ctx context.Context, treatments []catalog.Treatment, req Request) (*Quote, error) {
	_, span := quoteTracer.Start(ctx, "quote.calculate")
	defer span.End()

	q, err := c.calculate(treatments, req)
	if err != nil {
		span.RecordError(err)
		c.observe(outcomeFor(err))
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("quote.treatment_id", q.TreatmentID),
		attribute.Int("quote.quantity", q.Quantity),
		attribute.Int("quote.discount_percent", q.DiscountPercent),
		attribute.String("quote.policy", string(q.Policy)),
	)
	c.observe("ok")
	return q, nil
}

func (c *Calculator) calculate(treatments []catalog.Treatment, req Request) (*Quote, error) {
	rawID := strings.TrimSpace(req.TreatmentID)
	if rawID == "" {
		return nil, ErrNoTreatmentSelected
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return nil, ErrTreatmentNotFound
	}
	t, ok := catalog.FindByID(treatments, id)
	if !ok {
		return nil, ErrTreatmentNotFound
	}

	pct, err := c.ParseDiscount(req.Discount)
	if err != nil {
		return nil, err
	}
	qty := CoerceQuantity(req.Quantity)

	unit := c.policy.UnitPrice(t)
	subtotal := unit.MulInt(int64(qty))
	discount := subtotal.Percent(pct)

	return &Quote{
		TreatmentID:     t.ID,
		TreatmentName:   t.Name,
		UnitPrice:       unit,
		PriceLabel:      t.PriceLabel,
		Quantity:        qty,
		Subtotal:        subtotal,
		DiscountPercent: pct,
		DiscountAmount:  discount,
		Total:           subtotal.Sub(discount),
		Policy:          c.policy,
	}, nil
}

// ParseDiscount accepts an empty value (0) or one of the configured tiers,
// optionally suffixed with "%".
func (c *Calculator) ParseDiscount(raw string) (int, error) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if raw == "" {
		return 0, nil
	}
	pct, err := strconv.Atoi(raw)
	if err != nil || !slices.Contains(c.tiers, pct) {
		return 0, ErrInvalidDiscount
	}
	return pct, nil
}

// CoerceQuantity reads the leading integer of raw. Anything non-numeric,
// zero or negative becomes 1.
func CoerceQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func outcomeFor(err error) string {
	switch err {
	case ErrNoTreatmentSelected:
		return "no_selection"
	case ErrTreatmentNotFound:
		return "not_found"
	case ErrInvalidDiscount:
		return "invalid_discount"
	default:
		return "error"
	}
}

func (c *Calculator) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveQuote(string(c.policy), outcome)
	}
}
