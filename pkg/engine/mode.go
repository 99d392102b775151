package engine

// ColorMode selects the transform variant. It is resolved exactly once,
// when the engine argument list is built.
type ColorMode int

const (
	// ModeColor lifts the background to white while keeping marker colors
	ModeColor ColorMode = iota

	// ModeGray additionally reduces the result to grayscale
	ModeGray
)

func (m ColorMode) String() string {
	if m == ModeGray {
		return "grayscale"
	}
	return "color"
}

// Args returns the fixed ImageMagick argument chain for the mode: a
// difference-of-gaussians edge lift, negation, normalization, a light
// blur, and a level stretch that pushes the board background to pure
// white.
func (m ColorMode) Args() []string {
	args := []string{
		"-morphology", "Convolve", "DoG:15,100,0",
		"-negate",
		"-normalize",
		"-blur", "0x1",
	}
	if m == ModeGray {
		args = append(args, "-colorspace", "Gray")
	} else {
		args = append(args, "-channel", "RGB")
	}
	return append(args, "-level", "60%,91%,0.1")
}
