// Package slider tracks the visible page of the treatment carousel.
package slider

import (
	"fmt"
	"strconv"
)

// QueryParam carries the page index in landing page links.
const QueryParam = "pagina"

// Controller holds the current page of a paginated view. A Controller is
// owned by a single request and is not safe for concurrent use.
type Controller struct {
	current   int
	pageCount int
}

// New returns a controller at page 0. pageCount below 1 is treated as 1.
func New(pageCount int) *Controller {
	if pageCount < 1 {
		pageCount = 1
	}
	return &Controller{pageCount: pageCount}
}

// FromQuery returns a controller positioned at the page named by raw,
// clamped into range. Unparseable values start at page 0.
func FromQuery(pageCount int, raw string) *Controller {
	c := New(pageCount)
	if n, err := strconv.Atoi(raw); err == nil {
		c.GoTo(n)
	}
	return c
}

// Current returns the current page index.
func (c *Controller) Current() int { return c.current }

// PageCount returns the number of pages.
func (c *Controller) PageCount() int { return c.pageCount }

// Next advances one page; it is a no-op on the last page.
func (c *Controller) Next() {
	if c.current < c.pageCount-1 {
		c.current++
	}
}

// Previous goes back one page; it is a no-op on the first page.
func (c *Controller) Previous() {
	if c.current > 0 {
		c.current--
	}
}

// GoTo jumps to index, clamped to [0, pageCount-1].
func (c *Controller) GoTo(index int) {
	switch {
	case index < 0:
		c.current = 0
	case index >= c.pageCount:
		c.current = c.pageCount - 1
	default:
		c.current = index
	}
}

// Offset is the horizontal track offset in percent of the container width.
func (c *Controller) Offset() int {
	return c.current * 100
}

// Transform is the CSS transform for the track.
func (c *Controller) Transform() string {
	return fmt.Sprintf("translateX(-%d%%)", c.Offset())
}

// ControlsEnabled reports whether arrows and dots should be shown.
func (c *Controller) ControlsEnabled() bool {
	return c.pageCount > 1
}

// HasPrevious reports whether Previous would move.
func (c *Controller) HasPrevious() bool { return c.current > 0 }

// HasNext reports whether Next would move.
func (c *Controller) HasNext() bool { return c.current < c.pageCount-1 }

// Dot is one pagination indicator.
type Dot struct {
	Index  int
	Label  string
	Active bool
}

// Dots returns one dot per page.
func (c *Controller) Dots() []Dot {
	dots := make([]Dot, c.pageCount)
	for i := range dots {
		dots[i] = Dot{Index: i, Label: fmt.Sprintf("Página %d", i+1), Active: i == c.current}
	}
	return dots
}

// Link returns the query string selecting page index.
func Link(index int) string {
	return "?" + QueryParam + "=" + strconv.Itoa(index) + "#tratamientos"
}

// PreviousLink links to the previous page, or to the current one at the start.
func (c *Controller) PreviousLink() string {
	probe := *c
	probe.Previous()
	return Link(probe.current)
}

// NextLink links to the next page, or to the current one at the end.
func (c *Controller) NextLink() string {
	probe := *c
	probe.Next()
	return Link(probe.current)
}
