package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Placeholder is the first entry of the quote selector.
	Placeholder = "-- Selecciona un tratamiento --"

	// EmptyCounter is shown when no treatments are loaded.
	EmptyCounter = "Sin tratamientos registrados"

	featureSeparator = " · "
)

// Option is one entry of the quote selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Card is the display form of one treatment.
type Card struct {
	ID              int
	Name            string
	Description     string
	PriceLabel      string
	Features        string
	Image           string
	QuoteHref       string
	AppointmentHref string
}

// Page is one slider page of cards.
type Page struct {
	Index int
	Cards []Card
}

// View is everything the catalog section and the quote selector need.
type View struct {
	Options     []Option
	Pages       []Page
	Count       int
	CounterText string
}

// Empty reports whether the view has no treatments.
func (v View) Empty() bool {
	return v.Count == 0
}

// Render builds the full catalog view. selectedID marks the matching option;
// zero selects the placeholder.
func Render(treatments []Treatment, selectedID int) View {
	view := View{
		Options: make([]Option, 0, len(treatments)+1),
		Count:   len(treatments),
	}
	view.Options = append(view.Options, Option{Value: "", Label: Placeholder, Selected: selectedID == 0})
	for _, t := range treatments {
		view.Options = append(view.Options, Option{
			Value:    strconv.Itoa(t.ID),
			Label:    OptionLabel(t),
			Selected: t.ID == selectedID,
		})
	}

	for i, chunk := range Paginate(treatments, PageSize) {
		page := Page{Index: i, Cards: make([]Card, 0, len(chunk))}
		for _, t := range chunk {
			page.Cards = append(page.Cards, NewCard(t))
		}
		view.Pages = append(view.Pages, page)
	}

	if view.Count == 0 {
		view.CounterText = EmptyCounter
	} else {
		view.CounterText = fmt.Sprintf("%d tratamientos disponibles", view.Count)
	}
	return view
}

// OptionLabel is "name — price label".
func OptionLabel(t Treatment) string {
	label := t.PriceLabel
	if label == "" {
		label = "$" + t.BasePrice.Display()
	}
	return t.Name + " — " + label
}

// NewCard projects a treatment into its card.
func NewCard(t Treatment) Card {
	return Card{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		PriceLabel:      t.PriceLabel,
		Features:        strings.Join(t.Features, featureSeparator),
		Image:           t.Image,
		QuoteHref:       fmt.Sprintf("?tratamiento=%d#cotizacion", t.ID),
		AppointmentHref: "#contacto",
	}
}
