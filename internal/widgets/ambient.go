package widgets

import (
	"fmt"
	"math"
	"strings"
)

// PhaseStep is the phase advance per animation frame.
const PhaseStep = 0.005

// Frame is one tick of the animated login background. Every field is a pure
// function of the phase.
type Frame struct {
	GlowX, GlowY         float64
	BackgroundAngle      float64
	PanelHue, PanelAngle float64
	MediaGlowX           float64
	MediaGlowY           float64
	FormHue, FormAngle   float64
	FormGlowX, FormGlowY float64
	CardGlowX, CardGlowY float64
}

// FrameAt computes the frame for phase t.
func FrameAt(t float64) Frame {
	return Frame{
		GlowX:           20 + math.Sin(t)*18,
		GlowY:           25 + math.Cos(t*1.1)*12,
		BackgroundAngle: 110 + math.Sin(t*0.7)*6,
		PanelHue:        205 + math.Sin(t*0.8)*10,
		PanelAngle:      130 + math.Cos(t*0.5)*10,
		MediaGlowX:      35 + math.Sin(t*0.6)*25,
		MediaGlowY:      25 + math.Cos(t*0.4)*20,
		FormHue:         215 + math.Cos(t*0.6)*8,
		FormAngle:       205 + math.Sin(t*0.5)*10,
		FormGlowX:       58 + math.Sin(t*0.9)*18,
		FormGlowY:       48 + math.Cos(t*0.7)*12,
		CardGlowX:       72 + math.Sin(t*1.3)*18,
		CardGlowY:       28 + math.Cos(t*1.1)*12,
	}
}

// Vars returns the CSS custom properties for the frame, in a stable order.
func (f Frame) Vars() [][2]string {
	pct := func(v float64) string { return fmt.Sprintf("%.2f%%", v) }
	deg := func(v float64) string { return fmt.Sprintf("%.2fdeg", v) }
	num := func(v float64) string { return fmt.Sprintf("%.2f", v) }
	return [][2]string{
		{"--auth-glow-x", pct(f.GlowX)},
		{"--auth-glow-y", pct(f.GlowY)},
		{"--auth-bg-angle", deg(f.BackgroundAngle)},
		{"--auth-panel-hue", num(f.PanelHue)},
		{"--auth-panel-angle", deg(f.PanelAngle)},
		{"--auth-media-glow-x", pct(f.MediaGlowX)},
		{"--auth-media-glow-y", pct(f.MediaGlowY)},
		{"--auth-form-hue", num(f.FormHue)},
		{"--auth-form-angle", deg(f.FormAngle)},
		{"--auth-form-glow-x", pct(f.FormGlowX)},
		{"--auth-form-glow-y", pct(f.FormGlowY)},
		{"--auth-card-glow-x", pct(f.CardGlowX)},
		{"--auth-card-glow-y", pct(f.CardGlowY)},
	}
}

// Style renders the frame as an inline style attribute value.
func (f Frame) Style() string {
	vars := f.Vars()
	parts := make([]string, 0, len(vars))
	for _, kv := range vars {
		parts = append(parts, kv[0]+": "+kv[1])
	}
	return strings.Join(parts, "; ")
}

// Ambient is the phase counter of the animation. It only moves forward.
type Ambient struct {
	phase float64
}

// Tick advances the phase one step and returns the new frame.
func (a *Ambient) Tick() Frame {
	a.phase += PhaseStep
	return FrameAt(a.phase)
}

// Phase returns the current phase.
func (a *Ambient) Phase() float64 { return a.phase }
