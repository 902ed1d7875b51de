package web

import (
	"html/template"
	"strconv"
	"time"

	"github.com/vitaldent/clinic-site/internal/appointments"
	"github.com/vitaldent/clinic-site/internal/catalog"
	"github.com/vitaldent/clinic-site/internal/http/flash"
	"github.com/vitaldent/clinic-site/internal/quote"
	"github.com/vitaldent/clinic-site/internal/slider"
	"github.com/vitaldent/clinic-site/internal/widgets"
)

type pageData struct {
	ClinicName       string
	Theme            widgets.ThemeAssets
	FontSizePx       int
	Nav              []widgets.NavLink
	HeaderOffset     int
	SectionTolerance int
	AmbientStyle     template.CSS
	PhaseStep        float64
	Flash            *flash.Message
	Catalog          catalog.View
	Slider           sliderView
	Quote            quoteView
	Appointment      appointmentView
	Gallery          widgets.Gallery
	Testimonials     []widgets.Testimonial
	Year             int

	treatments []catalog.Treatment
}

// selectTreatment marks id in the quote selector; unknown ids leave the
// placeholder selected.
func (p *pageData) selectTreatment(id int) {
	if _, ok := catalog.FindByID(p.treatments, id); !ok {
		return
	}
	for i := range p.Catalog.Options {
		p.Catalog.Options[i].Selected = p.Catalog.Options[i].Value == strconv.Itoa(id)
	}
}

type dotView struct {
	Label  string
	Href   string
	Active bool
}

type sliderView struct {
	Current         int
	PageCount       int
	Transform       template.CSS
	ControlsEnabled bool
	HasPrevious     bool
	HasNext         bool
	PreviousLink    string
	NextLink        string
	Dots            []dotView
}

func newSliderView(c *slider.Controller) sliderView {
	v := sliderView{
		Current:         c.Current(),
		PageCount:       c.PageCount(),
		Transform:       template.CSS(c.Transform()),
		ControlsEnabled: c.ControlsEnabled(),
		HasPrevious:     c.HasPrevious(),
		HasNext:         c.HasNext(),
		PreviousLink:    c.PreviousLink(),
		NextLink:        c.NextLink(),
	}
	for _, d := range c.Dots() {
		v.Dots = append(v.Dots, dotView{Label: d.Label, Href: slider.Link(d.Index), Active: d.Active})
	}
	return v
}

type tierOption struct {
	Value    int
	Label    string
	Selected bool
}

type quoteView struct {
	Tiers    []tierOption
	Quantity int
	Result   *quote.Quote
	Notice   string
	Error    string
}

func newQuoteView(tiers []int) quoteView {
	v := quoteView{Quantity: 1}
	for i, pct := range tiers {
		label := "Sin descuento"
		if pct > 0 {
			label = strconv.Itoa(pct) + "%"
		}
		v.Tiers = append(v.Tiers, tierOption{Value: pct, Label: label, Selected: i == 0})
	}
	return v
}

func (v *quoteView) selectTier(pct int) {
	for i := range v.Tiers {
		v.Tiers[i].Selected = v.Tiers[i].Value == pct
	}
}

type treatmentOption struct {
	ID      int
	Label   string
	Checked bool
}

type appointmentView struct {
	Name    string
	Phone   string
	Email   string
	Date    string
	Time    string
	MinDate string
	Max     int
	Options []treatmentOption
	Error   string

	limitHit bool
}

func newAppointmentView(treatments []catalog.Treatment, now time.Time) appointmentView {
	v := appointmentView{
		MinDate: now.Format("2006-01-02"),
		Max:     appointments.MaxTreatments,
		Options: make([]treatmentOption, 0, len(treatments)),
	}
	for _, t := range treatments {
		v.Options = append(v.Options, treatmentOption{ID: t.ID, Label: t.Name})
	}
	return v
}

// fill restores the submitted values. Checkboxes are replayed through a
// Selection so no more than the allowed number come back checked.
func (v *appointmentView) fill(req appointments.Request) {
	v.Name = req.Name
	v.Phone = req.Phone
	v.Email = req.Email
	v.Date = req.Date
	v.Time = req.Time
	if v.Date == "" && v.Time == "" && len(req.DateTime) >= len("2006-01-02T15:04") {
		v.Date, v.Time = req.DateTime[:10], req.DateTime[11:16]
	}

	sel := appointments.NewSelection()
	for _, raw := range req.TreatmentIDs {
		id, err := strconv.Atoi(raw)
		if err != nil || sel.Contains(id) {
			continue
		}
		if err := sel.Toggle(id); err != nil {
			v.limitHit = true
			break
		}
	}
	for i := range v.Options {
		v.Options[i].Checked = sel.Contains(v.Options[i].ID)
	}
}
