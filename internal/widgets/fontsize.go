package widgets

const (
	// FontSizeMin and FontSizeMax bound the base font size in pixels.
	FontSizeMin = 12
	FontSizeMax = 28
	// FontSizeDefault is the base size when no preference exists.
	FontSizeDefault = 16
	// FontSizeStep is the size change per click.
	FontSizeStep = 2
)

// ClampFontSize bounds px to [FontSizeMin, FontSizeMax]; zero means default.
func ClampFontSize(px int) int {
	switch {
	case px == 0:
		return FontSizeDefault
	case px < FontSizeMin:
		return FontSizeMin
	case px > FontSizeMax:
		return FontSizeMax
	default:
		return px
	}
}

// AdjustFontSize moves current one step in the direction of delta.
func AdjustFontSize(current, delta int) int {
	current = ClampFontSize(current)
	switch {
	case delta > 0:
		return ClampFontSize(current + FontSizeStep)
	case delta < 0:
		return ClampFontSize(current - FontSizeStep)
	default:
		return current
	}
}
