package widgets

const (
	// HeaderOffset is added to the scroll position to account for the fixed header.
	HeaderOffset = 160
	// SectionTolerance lets a section become active slightly before its top.
	SectionTolerance = 40
	// DefaultSection is highlighted when no section has been reached.
	DefaultSection = "inicio"
)

// Section is a navigable page region.
type Section struct {
	ID  string
	Top int
}

// NavLink is one entry of the navigation bar.
type NavLink struct {
	ID     string
	Label  string
	Active bool
}

// DefaultNav lists the landing page sections in document order.
var DefaultNav = []NavLink{
	{ID: "inicio", Label: "Inicio"},
	{ID: "tratamientos", Label: "Tratamientos"},
	{ID: "cotizacion", Label: "Cotización"},
	{ID: "galeria", Label: "Galería"},
	{ID: "testimonios", Label: "Testimonios"},
	{ID: "contacto", Label: "Contacto"},
}

// ActiveSection returns the id of the last section whose top, less the
// tolerance, is at or above scrollY plus the header offset.
func ActiveSection(scrollY int, sections []Section) string {
	pos := scrollY + HeaderOffset
	active := DefaultSection
	for _, s := range sections {
		if pos >= s.Top-SectionTolerance {
			active = s.ID
		}
	}
	return active
}

// Nav returns the navigation bar with active marked.
func Nav(active string) []NavLink {
	if active == "" {
		active = DefaultSection
	}
	links := make([]NavLink, len(DefaultNav))
	for i, l := range DefaultNav {
		l.Active = l.ID == active
		links[i] = l
	}
	return links
}
