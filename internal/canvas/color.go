package canvas

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// RGB is a 24-bit colour.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

func (c RGB) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var (
	profileOnce sync.Once
	profile     termenv.Profile
	seqCache    sync.Map
)

// envProfile is read once; NO_COLOR and a dumb TERM give termenv.Ascii.
func envProfile() termenv.Profile {
	profileOnce.Do(func() {
		profile = termenv.EnvColorProfile()
	})
	return profile
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp blends a toward b.
func Lerp(a, b RGB, t float64) RGB {
	t = clamp01(t)
	return RGB{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

var (
	Neutral     = RGB{R: 150, G: 160, B: 175}
	Compressed  = RGB{R: 0, G: 174, B: 255}
	Stretched   = RGB{R: 255, G: 80, B: 60}
	GridColor   = RGB{R: 70, G: 80, B: 100}
	PointColor  = RGB{R: 255, G: 230, B: 92}
	AnchorColor = RGB{R: 20, G: 255, B: 161}
)

// StrainColor maps a relative length error to a colour: blue when a spring
// is shorter than it wants to be, red when longer. full is the strain that
// saturates.
func StrainColor(strain, full float64) RGB {
	if !(full > 0) || math.IsNaN(strain) {
		return Neutral
	}
	t := math.Min(math.Abs(strain)/full, 1)
	if strain < 0 {
		return Lerp(Neutral, Compressed, t)
	}
	return Lerp(Neutral, Stretched, t)
}

// Heat maps t in [0, 1] onto a dark-blue to red ramp.
func Heat(t float64) RGB {
	t = clamp01(t)
	switch {
	case t < 0.25:
		return Lerp(RGB{R: 16, G: 25, B: 70}, RGB{R: 0, G: 174, B: 255}, t/0.25)
	case t < 0.5:
		return Lerp(RGB{R: 0, G: 174, B: 255}, RGB{R: 20, G: 255, B: 161}, (t-0.25)/0.25)
	case t < 0.75:
		return Lerp(RGB{R: 20, G: 255, B: 161}, RGB{R: 255, G: 230, B: 92}, (t-0.5)/0.25)
	default:
		return Lerp(RGB{R: 255, G: 230, B: 92}, RGB{R: 255, G: 80, B: 60}, (t-0.75)/0.25)
	}
}

// ansiState emits a colour change only when the colour differs from the
// last one written.
type ansiState struct {
	profile termenv.Profile
	last    RGB
	dirty   bool
}

func (s *ansiState) set(sb *strings.Builder, c RGB) {
	if s.profile == termenv.Ascii || (s.dirty && c == s.last) {
		return
	}
	sb.WriteString(colorSequence(s.profile, c))
	s.last, s.dirty = c, true
}

func (s *ansiState) reset(sb *strings.Builder) {
	if !s.dirty {
		return
	}
	sb.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	s.dirty = false
}

func colorSequence(p termenv.Profile, c RGB) string {
	key := uint32(p)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}
	seq := termenv.CSI + p.Color(c.hex()).Sequence(false) + "m"
	seqCache.Store(key, seq)
	return seq
}
