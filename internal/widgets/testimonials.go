package widgets

import "strings"

// Testimonial is one patient quote.
type Testimonial struct {
	Name   string
	Text   string
	Rating int
	Avatar string
}

// Stars renders the rating as filled and empty stars out of five.
func (t Testimonial) Stars() string {
	r := t.Rating
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}
	return strings.Repeat("★", r) + strings.Repeat("☆", 5-r)
}

// Testimonials returns the fixed testimonial list.
func Testimonials() []Testimonial {
	return []Testimonial{
		{Name: "Laura M.", Text: "Excelente servicio, muy profesional.", Rating: 5, Avatar: "https://i.pravatar.cc/100?img=12"},
		{Name: "Carlos G.", Text: "Me atendieron rápido y el tratamiento fue efectivo.", Rating: 4, Avatar: "https://i.pravatar.cc/100?img=5"},
		{Name: "Ana P.", Text: "Ambiente agradable y personal amable.", Rating: 5, Avatar: "https://i.pravatar.cc/100?img=20"},
	}
}
